package matching

func allCategories() []string {
	return []string{"general", "sc", "st", "obc", "pwd"}
}

// DefaultCatalog returns the built-in opportunity catalog.
func DefaultCatalog() []Opportunity {
	return []Opportunity{
		{
			Title:              "Data Science Intern @ Google",
			RequiredSkills:     []string{"python", "data analysis", "statistics"},
			Description:        "Analyze data and build models.",
			Capacity:           3,
			Location:           "urban",
			Sectors:            []string{"AI"},
			EligibleCategories: allCategories(),
			RepeatAllowed:      true,
		},
		{
			Title:              "Web Developer Intern @ Microsoft",
			RequiredSkills:     []string{"html", "css", "javascript"},
			Description:        "Build modern responsive web apps.",
			Capacity:           2,
			Location:           "urban",
			Sectors:            []string{"Web Development"},
			EligibleCategories: allCategories(),
			RepeatAllowed:      true,
		},
		{
			Title:              "AI Research Intern @ IBM",
			RequiredSkills:     []string{"machine learning", "python", "deep learning"},
			Description:        "Research AI algorithms.",
			Capacity:           1,
			Location:           "urban",
			Sectors:            []string{"AI"},
			EligibleCategories: allCategories(),
			RepeatAllowed:      false,
		},
		{
			Title:              "Cybersecurity Intern @ Infosys",
			RequiredSkills:     []string{"networking", "security", "python"},
			Description:        "Protect digital assets.",
			Capacity:           2,
			Location:           "rural",
			Sectors:            []string{"Cybersecurity"},
			EligibleCategories: []string{"sc", "st", "obc", "pwd"},
			RestrictedQuota:    true,
			RepeatAllowed:      true,
		},
		{
			Title:              "UX/UI Design Intern @ Adobe",
			RequiredSkills:     []string{"design", "figma", "prototyping"},
			Description:        "Design intuitive interfaces.",
			Capacity:           2,
			Location:           "aspirational",
			Sectors:            []string{"Design"},
			EligibleCategories: allCategories(),
			RestrictedQuota:    true,
			RepeatAllowed:      true,
		},
	}
}
