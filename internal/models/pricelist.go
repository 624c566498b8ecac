package models

import (
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// Field name constants for the ZTPRECIOS_LISTAS collection.
const (
	PriceListsCollection = "ZTPRECIOS_LISTAS"

	IDListaOK       = "IDLISTAOK"
	IDInstitutoOK   = "IDINSTITUTOOK"
	IDListaBK       = "IDLISTABK"
	SKUsIDs         = "SKUSIDS"
	DesLista        = "DESLISTA"
	FechaExpiraIni  = "FECHAEXPIRAINI"
	FechaExpiraFin  = "FECHAEXPIRAFIN"
	IDTipoListaOK   = "IDTIPOLISTAOK"
	IDTipoFormulaOK = "IDTIPOFORMULAOK"
)

// PriceList describes a price list. GetAll intentionally returns both live
// and logically deleted lists for traceability.
func PriceList() Entity {
	return Entity{
		Name:                PriceListsCollection,
		KeyField:            IDListaOK,
		Required:            []string{IDListaOK, DesLista, FechaExpiraIni, FechaExpiraFin},
		ListIncludesDeleted: true,
		Validate:            validatePriceList,
	}
}

func validatePriceList(rec domain.Record) error {
	ini, okIni := parseDate(rec[FechaExpiraIni])
	fin, okFin := parseDate(rec[FechaExpiraFin])
	if !okIni || !okFin {
		return domain.Validationf("%s and %s must be valid dates", FechaExpiraIni, FechaExpiraFin)
	}
	if !fin.After(ini) {
		return domain.Validationf("%s must be after %s", FechaExpiraFin, FechaExpiraIni)
	}
	return nil
}
