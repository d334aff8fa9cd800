package fieldconfig

// defaultConfig returns the built-in field configuration for the three
// attribute categories.
func defaultConfig() map[string]CategorySchema {
	return map[string]CategorySchema{
		"psychographic": {
			Label:       "Psychographic",
			Description: "Psychological attributes, interests, and values",
			Fields: []FieldDefinition{
				{Name: "interests", Type: FieldTypeList, Label: "Interests", Description: "Personal interests and hobbies"},
				{Name: "personal_values", Type: FieldTypeList, Label: "Personal Values", Description: "Core values the persona prioritizes"},
				{Name: "attitudes", Type: FieldTypeList, Label: "Attitudes", Description: "General outlook and attitudes"},
				{Name: "lifestyle", Type: FieldTypeString, Label: "Lifestyle", Description: "Overall lifestyle description"},
				{Name: "personality", Type: FieldTypeString, Label: "Personality", Description: "Personality traits and characteristics"},
				{Name: "opinions", Type: FieldTypeList, Label: "Opinions", Description: "Specific viewpoints on relevant topics"},
			},
		},
		"behavioral": {
			Label:       "Behavioral",
			Description: "Online behavior and usage patterns",
			Fields: []FieldDefinition{
				{Name: "browsing_habits", Type: FieldTypeList, Label: "Browsing Habits", Description: "Types of websites frequently visited"},
				{Name: "purchase_history", Type: FieldTypeList, Label: "Purchase History", Description: "Types of products/services purchased"},
				{Name: "brand_interactions", Type: FieldTypeList, Label: "Brand Interactions", Description: "Brands frequently engaged with"},
				{Name: "device_usage", Type: FieldTypeDict, Label: "Device Usage", Description: "How different devices are used"},
				{Name: "social_media_activity", Type: FieldTypeDict, Label: "Social Media Activity", Description: "Engagement with social platforms"},
				{Name: "content_consumption", Type: FieldTypeDict, Label: "Content Consumption", Description: "Media consumption patterns"},
			},
		},
		"contextual": {
			Label:       "Contextual",
			Description: "Situational and environmental factors",
			Fields: []FieldDefinition{
				{Name: "time_of_day", Type: FieldTypeString, Label: "Time of Day", Description: "When the persona is most active online",
					Options: []string{"morning", "afternoon", "evening", "night", "all day"}},
				{Name: "day_of_week", Type: FieldTypeString, Label: "Day of Week", Description: "Which days the persona is most active",
					Options: []string{"weekday", "weekend", "all week"}},
				{Name: "season", Type: FieldTypeString, Label: "Season", Description: "Seasonal context for the persona",
					Options: []string{"spring", "summer", "fall", "winter"}},
				{Name: "weather", Type: FieldTypeString, Label: "Weather", Description: "Weather conditions affecting the persona"},
				{Name: "device_type", Type: FieldTypeString, Label: "Device Type", Description: "Primary device used",
					Options: []string{"desktop", "laptop", "tablet", "mobile"}},
				{Name: "browser_type", Type: FieldTypeString, Label: "Browser Type", Description: "Primary web browser used",
					Options: []string{"chrome", "firefox", "safari", "edge"}},
				{Name: "screen_size", Type: FieldTypeString, Label: "Screen Size", Description: "Display resolution, e.g. 1920x1080"},
				{Name: "connection_type", Type: FieldTypeString, Label: "Connection Type", Description: "Internet connection",
					Options: []string{"wifi", "ethernet", "4g", "5g", "3g"}},
			},
		},
	}
}
