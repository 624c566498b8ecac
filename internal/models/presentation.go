package models

import (
	"encoding/json"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// Field name constants for the ZTPRODUCTS_PRESENTACIONES collection.
const (
	PresentationsCollection = "ZTPRODUCTS_PRESENTACIONES"

	IdPresentaOK       = "IdPresentaOK"
	NombrePresentacion = "NOMBREPRESENTACION"
	Descripcion        = "Descripcion"
	PropiedadesExtras  = "PropiedadesExtras"
)

// Presentation describes a sellable presentation of a product. The parent
// product must exist before a presentation can be created.
func Presentation() Entity {
	return Entity{
		Name:     PresentationsCollection,
		KeyField: IdPresentaOK,
		Required: []string{IdPresentaOK, SKUID, NombrePresentacion, Descripcion},
		References: []Reference{
			{Field: SKUID, Entity: ProductsCollection},
		},
		Lookups: []Lookup{
			{Op: "GetByIdPresentaOK", Field: IdPresentaOK},
			{Op: "GetBySKUID", Field: SKUID, Many: true, ExcludeDeleted: true},
		},
		Normalize: normalizePresentation,
	}
}

// normalizePresentation accepts PropiedadesExtras as a JSON-encoded object.
func normalizePresentation(rec domain.Record) error {
	raw, ok := rec[PropiedadesExtras].(string)
	if !ok || raw == "" {
		return nil
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return domain.Validationf("field %s is not a valid JSON object", PropiedadesExtras)
	}
	rec[PropiedadesExtras] = props
	return nil
}
