package catalog

// builtinDefinitions is the embedded default catalog, used when no
// external catalog file is configured or the configured file cannot be
// loaded. It covers the standard panel set of the virtual clinic:
// three laboratory panels, vital signs, three physical examinations and
// three imaging studies.
func builtinDefinitions() []*TestDefinition {
	num := func(min, max float64) NormalRange {
		return NormalRange{Kind: RangeNumeric, Min: min, Max: max}
	}

	return []*TestDefinition{
		{
			ID:       "cbc",
			Name:     "Общий анализ крови",
			Category: CategoryLaboratory,
			ParameterOrder: []string{"wbc", "hgb", "plt", "neutrophils", "lymphocytes"},
			Parameters: map[string]Parameter{
				"wbc":         {Name: "Лейкоциты", NormalRange: num(4.0, 9.0), Unit: "×10⁹/л", Ideal: 6.0},
				"hgb":         {Name: "Гемоглобин", NormalRange: num(130, 160), Unit: "г/л", Ideal: 145},
				"plt":         {Name: "Тромбоциты", NormalRange: num(150, 400), Unit: "×10⁹/л", Ideal: 250},
				"neutrophils": {Name: "Нейтрофилы", NormalRange: num(45, 70), Unit: "%", Ideal: 58},
				"lymphocytes": {Name: "Лимфоциты", NormalRange: num(20, 40), Unit: "%", Ideal: 30},
			},
			SumCap: &SumCap{Parameters: [2]string{"neutrophils", "lymphocytes"}, Limit: 100},
		},
		{
			ID:       "biochemistry",
			Name:     "Биохимический анализ крови",
			Category: CategoryLaboratory,
			ParameterOrder: []string{"glucose", "creatinine", "alt", "ast", "crp"},
			Parameters: map[string]Parameter{
				"glucose":    {Name: "Глюкоза", NormalRange: num(3.9, 6.1), Unit: "ммоль/л", Ideal: 5.0},
				"creatinine": {Name: "Креатинин", NormalRange: num(62, 106), Unit: "мкмоль/л", Ideal: 84},
				"alt":        {Name: "АЛТ", NormalRange: num(0, 40), Unit: "Ед/л", Ideal: 22},
				"ast":        {Name: "АСТ", NormalRange: num(0, 40), Unit: "Ед/л", Ideal: 22},
				"crp":        {Name: "СРБ", NormalRange: num(0, 5), Unit: "мг/л", Ideal: 1},
			},
		},
		{
			ID:       "urinalysis",
			Name:     "Общий анализ мочи",
			Category: CategoryLaboratory,
			ParameterOrder: []string{"protein", "wbc", "rbc"},
			Parameters: map[string]Parameter{
				"protein": {Name: "Белок", NormalRange: num(0.0, 0.033), Unit: "г/л", Ideal: 0.0},
				"wbc":     {Name: "Лейкоциты", NormalRange: num(0, 5), Unit: "клеток/п.зр.", Ideal: 1},
				"rbc":     {Name: "Эритроциты", NormalRange: num(0, 2), Unit: "клеток/п.зр.", Ideal: 0},
			},
		},
		{
			ID:       "vital_signs",
			Name:     "Витальные показатели",
			Category: CategoryExamination,
			ParameterOrder: []string{"bp_systolic", "hr", "temperature", "rr"},
			Parameters: map[string]Parameter{
				"bp_systolic": {Name: "Систолическое АД", NormalRange: num(110, 130), Unit: "мм рт. ст.", Ideal: 120},
				"hr":          {Name: "Частота пульса", NormalRange: num(60, 90), Unit: "уд/мин", Ideal: 75},
				"temperature": {Name: "Температура", NormalRange: num(36.3, 36.9), Unit: "°C", Ideal: 36.6},
				"rr":          {Name: "ЧДД", NormalRange: num(12, 20), Unit: "в/мин", Ideal: 16},
			},
		},
		{
			ID:          "abdominal_exam",
			Name:        "Осмотр живота",
			Category:    CategoryExamination,
			Description: "Живот мягкий, безболезненный при пальпации во всех отделах. Симптомов раздражения брюшины нет.",
		},
		{
			ID:          "chest_exam",
			Name:        "Аускультация легких",
			Category:    CategoryExamination,
			Description: "Дыхание везикулярное, проводится во все отделы. Хрипов нет. Бронхиальное дыхание не выслушивается.",
		},
		{
			ID:          "heart_exam",
			Name:        "Аускультация сердца",
			Category:    CategoryExamination,
			Description: "Тоны сердца ясные, ритмичные. Шумов нет. Частота сердечных сокращений в пределах нормы.",
		},
		{
			ID:          "ultrasound_abdomen",
			Name:        "УЗИ органов брюшной полости",
			Category:    CategoryImaging,
			Description: "Печень: размеры не увеличены, эхогенность обычная. Желчный пузырь без конкрементов. Поджелудочная железа и селезенка без особенностей. Свободной жидкости нет.",
		},
		{
			ID:          "xray_chest",
			Name:        "Рентгенография органов грудной клетки",
			Category:    CategoryImaging,
			Description: "Легочные поля без очаговых и инфильтративных изменений. Корни структурные. Сердце и средостение без особенностей.",
		},
		{
			ID:          "ct_abdomen",
			Name:        "КТ органов брюшной полости",
			Category:    CategoryImaging,
			Description: "Печень, селезенка, поджелудочная железа: без патологических изменений. Почки обычной формы и размеров. Свободной жидкости нет.",
		},
	}
}
