package service

import (
	"kinlab-backend/internal/model"
)

// defaultConcentration is what every concentration input starts at.
const defaultConcentration = "1.0"

// BuildForm produces exactly one numeric input descriptor per species,
// preserving the species order from session creation.
func BuildForm(species []string) []model.FormField {
	fields := make([]model.FormField, len(species))
	for i, sp := range species {
		fields[i] = model.FormField{
			Name:        sp,
			Label:       sp,
			Placeholder: defaultConcentration,
		}
	}
	return fields
}
