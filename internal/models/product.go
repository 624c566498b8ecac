package models

import (
	"encoding/json"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// Field name constants for the ZTPRODUCTS collection.
const (
	ProductsCollection = "ZTPRODUCTS"

	SKUID          = "SKUID"
	ProductName    = "PRODUCTNAME"
	DesSKU         = "DESSKU"
	Marca          = "MARCA"
	Categorias     = "CATEGORIAS"
	IDUnidadMedida = "IDUNIDADMEDIDA"
	Barcode        = "BARCODE"
	InfoAd         = "INFOAD"
)

// Product describes the product collection, keyed by SKU.
func Product() Entity {
	return Entity{
		Name:                ProductsCollection,
		KeyField:            SKUID,
		Required:            []string{SKUID, DesSKU, IDUnidadMedida},
		ListIncludesDeleted: true,
		Normalize:           normalizeProduct,
	}
}

// normalizeProduct accepts CATEGORIAS as a JSON-encoded array, which is how
// form-based clients submit it.
func normalizeProduct(rec domain.Record) error {
	raw, ok := rec[Categorias].(string)
	if !ok || raw == "" {
		return nil
	}
	var categories []any
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return domain.Validationf("field %s is not a valid JSON array", Categorias)
	}
	rec[Categorias] = categories
	return nil
}
