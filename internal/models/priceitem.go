package models

import (
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// Field name constants for the ZTPRECIOS_ITEMS collection.
const (
	PriceItemsCollection = "ZTPRECIOS_ITEMS"

	IdPrecioOK = "IdPrecioOK"
	IdListaOK  = "IdListaOK"
	Formula    = "Formula"
	CostoIni   = "CostoIni"
	CostoFin   = "CostoFin"
	Precio     = "Precio"
)

// PriceItem describes a priced entry of a price list. Its list, product,
// and presentation must all exist.
func PriceItem() Entity {
	return Entity{
		Name:     PriceItemsCollection,
		KeyField: IdPrecioOK,
		Required: []string{IdPrecioOK, IdListaOK, SKUID, IdPresentaOK, Precio},
		References: []Reference{
			{Field: IdListaOK, Entity: PriceListsCollection},
			{Field: SKUID, Entity: ProductsCollection},
			{Field: IdPresentaOK, Entity: PresentationsCollection},
		},
		Validate: validatePriceItem,
	}
}

func validatePriceItem(rec domain.Record) error {
	price, ok := asNumber(rec[Precio])
	if !ok {
		return domain.Validationf("field %s must be numeric", Precio)
	}
	if price < 0 {
		return domain.Validationf("field %s must not be negative", Precio)
	}
	return nil
}
