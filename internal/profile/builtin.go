package profile

// builtinTrades is the shipped trade table. Weight vectors are hand-tuned
// per trade: storm-driven trades lean on the storm signal, discretionary
// trades lean on income and ownership.
var builtinTrades = []TradeProfile{
	{
		ID:               "roofing",
		DisplayName:      "Roofing",
		Weights:          Weights{Age: 0.20, Storm: 0.30, Permit: 0.10, Income: 0.15, Ownership: 0.15, Distance: 0.10},
		PrimeAgeRange:    AgeRange{Min: 15, Max: 25},
		ExtendedAgeRange: AgeRange{Min: 12, Max: 35},
		IncomeThreshold:  65_000,
		AgeReason:        "Roofs in this area are ~%d years old, inside the typical replacement window",
		StormReason:      "%s reported %s about %.1f mi away",
		PermitReason:     "Active roofing permits nearby signal repair demand",
		IncomeReason:     "Median household income $%s supports full roof replacement",
		OwnerReason:      "%.0f%% owner-occupied homes, owners approve their own roof work",
	},
	{
		ID:               "hvac",
		DisplayName:      "HVAC",
		Weights:          Weights{Age: 0.30, Storm: 0.05, Permit: 0.15, Income: 0.20, Ownership: 0.15, Distance: 0.15},
		PrimeAgeRange:    AgeRange{Min: 12, Max: 20},
		ExtendedAgeRange: AgeRange{Min: 10, Max: 30},
		IncomeThreshold:  60_000,
		AgeReason:        "Homes around %d years old are due for HVAC system replacement",
		StormReason:      "%s reported %s about %.1f mi away",
		PermitReason:     "Mechanical permit activity nearby signals system turnover",
		IncomeReason:     "Median household income $%s supports system upgrades",
		OwnerReason:      "%.0f%% owner-occupied, owners invest in efficiency upgrades",
	},
	{
		ID:               "solar",
		DisplayName:      "Solar",
		Weights:          Weights{Age: 0.10, Storm: 0.05, Permit: 0.15, Income: 0.30, Ownership: 0.25, Distance: 0.15},
		PrimeAgeRange:    AgeRange{Min: 5, Max: 20},
		ExtendedAgeRange: AgeRange{Min: 3, Max: 30},
		IncomeThreshold:  85_000,
		AgeReason:        "Housing stock ~%d years old with roofs suitable for panel mounting",
		StormReason:      "%s reported %s about %.1f mi away",
		PermitReason:     "Nearby solar permit activity shows neighborhood adoption",
		IncomeReason:     "Median household income $%s fits solar financing profiles",
		OwnerReason:      "%.0f%% owner-occupied, only owners can approve installation",
	},
	{
		ID:               "plumbing",
		DisplayName:      "Plumbing",
		Weights:          Weights{Age: 0.35, Storm: 0.00, Permit: 0.15, Income: 0.15, Ownership: 0.15, Distance: 0.20},
		PrimeAgeRange:    AgeRange{Min: 30, Max: 60},
		ExtendedAgeRange: AgeRange{Min: 25, Max: 80},
		IncomeThreshold:  55_000,
		AgeReason:        "Homes ~%d years old commonly carry original supply lines",
		StormReason:      "%s reported %s about %.1f mi away",
		PermitReason:     "Plumbing permit activity nearby signals repipe demand",
		IncomeReason:     "Median household income $%s supports repipe projects",
		OwnerReason:      "%.0f%% owner-occupied homes with long-tenure maintenance needs",
	},
	{
		ID:               "landscaping",
		DisplayName:      "Landscaping",
		Weights:          Weights{Age: 0.10, Storm: 0.10, Permit: 0.05, Income: 0.30, Ownership: 0.25, Distance: 0.20},
		PrimeAgeRange:    AgeRange{Min: 5, Max: 30},
		ExtendedAgeRange: AgeRange{Min: 2, Max: 50},
		IncomeThreshold:  75_000,
		AgeReason:        "Established yards in homes ~%d years old need renovation work",
		StormReason:      "%s reported %s about %.1f mi away",
		PermitReason:     "Outdoor-improvement permits nearby signal spending on exteriors",
		IncomeReason:     "Median household income $%s supports recurring landscape service",
		OwnerReason:      "%.0f%% owner-occupied, owners maintain their own yards",
	},
	{
		ID:               "painting",
		DisplayName:      "Painting",
		Weights:          Weights{Age: 0.25, Storm: 0.05, Permit: 0.05, Income: 0.25, Ownership: 0.20, Distance: 0.20},
		PrimeAgeRange:    AgeRange{Min: 7, Max: 15},
		ExtendedAgeRange: AgeRange{Min: 5, Max: 25},
		IncomeThreshold:  60_000,
		AgeReason:        "Exteriors on homes ~%d years old are due for repainting",
		StormReason:      "%s reported %s about %.1f mi away",
		PermitReason:     "Renovation permits nearby often include paint work",
		IncomeReason:     "Median household income $%s supports professional painting",
		OwnerReason:      "%.0f%% owner-occupied, curb appeal matters to owners",
	},
	{
		ID:               "remodeling",
		DisplayName:      "Remodeling",
		Weights:          Weights{Age: 0.25, Storm: 0.00, Permit: 0.20, Income: 0.25, Ownership: 0.20, Distance: 0.10},
		PrimeAgeRange:    AgeRange{Min: 20, Max: 45},
		ExtendedAgeRange: AgeRange{Min: 15, Max: 60},
		IncomeThreshold:  80_000,
		AgeReason:        "Kitchens and baths in homes ~%d years old are remodel candidates",
		StormReason:      "%s reported %s about %.1f mi away",
		PermitReason:     "Remodel permit activity nearby shows neighborhood momentum",
		IncomeReason:     "Median household income $%s supports major remodel budgets",
		OwnerReason:      "%.0f%% owner-occupied, owners fund structural upgrades",
	},
	{
		ID:               GeneralID,
		DisplayName:      "General Home Services",
		Weights:          Weights{Age: 0.20, Storm: 0.10, Permit: 0.10, Income: 0.20, Ownership: 0.20, Distance: 0.20},
		PrimeAgeRange:    AgeRange{Min: 10, Max: 40},
		ExtendedAgeRange: AgeRange{Min: 5, Max: 60},
		IncomeThreshold:  60_000,
		AgeReason:        "Homes ~%d years old generate steady maintenance work",
		StormReason:      "%s reported %s about %.1f mi away",
		PermitReason:     "Permit activity nearby signals home-improvement spending",
		IncomeReason:     "Median household income $%s supports home services",
		OwnerReason:      "%.0f%% owner-occupied homes hire their own contractors",
	},
}

// builtinNiches holds non-trade verticals; currently only the photographer
// location-scouting niche.
var builtinNiches = []NicheProfile{
	{
		ID:          "photographer",
		DisplayName: "Photographer",
		Weights:     NicheWeights{Venue: 0.30, Rating: 0.15, PhotoFriendly: 0.25, Accessibility: 0.15, Distance: 0.15},
		VenueKeywords: []string{
			"wedding", "venue", "banquet", "event", "ballroom", "reception",
			"estate", "gardens", "vineyard", "barn", "manor", "hall",
		},
		PhotoKeywords: []string{
			"park", "garden", "trail", "overlook", "waterfront", "historic",
			"mural", "warehouse", "industrial", "downtown", "rooftop", "bridge",
		},
		AccessibleTypes: []string{
			"park", "tourist_attraction", "museum", "art_gallery", "library",
			"church", "city_hall", "plaza",
		},
	},
}
