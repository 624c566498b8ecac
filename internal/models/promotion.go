package models

import (
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// Field name constants for the ZTPROMOCIONES collection.
const (
	PromotionsCollection = "ZTPROMOCIONES"

	IdPromoOK            = "IdPromoOK"
	Titulo               = "Titulo"
	FechaIni             = "FechaIni"
	FechaFin             = "FechaFin"
	ProductosAplicables  = "ProductosAplicables"
	CategoriasAplicables = "CategoriasAplicables"
	MarcasAplicables     = "MarcasAplicables"
	DescuentoPorcentaje  = "DescuentoPorcentaje"
	DescuentoMonto       = "DescuentoMonto"
	TipoDescuento        = "TipoDescuento"
	PermiteAcumulacion   = "PermiteAcumulacion"
	LimiteUsos           = "LimiteUsos"
	UsosActuales         = "UsosActuales"
)

// Discount types.
const (
	DescuentoPorcentual = "PORCENTAJE"
	DescuentoFijo       = "MONTO_FIJO"
)

// Promotion describes a promotional campaign over products, presentations,
// categories, or brands.
func Promotion() Entity {
	return Entity{
		Name:                PromotionsCollection,
		KeyField:            IdPromoOK,
		Required:            []string{IdPromoOK, Titulo, FechaIni, FechaFin},
		ListIncludesDeleted: true,
		Validate:            validatePromotion,
	}
}

// validatePromotion enforces the promotion business rules before any
// persistence attempt: a strictly positive date range, a positive discount
// (capped at 100 for percentage discounts), and at least one applicable
// target.
func validatePromotion(rec domain.Record) error {
	ini, okIni := parseDate(rec[FechaIni])
	fin, okFin := parseDate(rec[FechaFin])
	if !okIni || !okFin {
		return domain.Validationf("%s and %s must be valid dates", FechaIni, FechaFin)
	}
	if !fin.After(ini) {
		return domain.Validationf("%s must be strictly after %s", FechaFin, FechaIni)
	}

	tipo, _ := rec[TipoDescuento].(string)
	if tipo == "" {
		tipo = DescuentoPorcentual
	}
	switch tipo {
	case DescuentoPorcentual:
		pct, ok := asNumber(rec[DescuentoPorcentaje])
		if !ok || pct <= 0 {
			return domain.Validationf("%s must be a positive number", DescuentoPorcentaje)
		}
		if pct > 100 {
			return domain.Validationf("%s must not exceed 100", DescuentoPorcentaje)
		}
	case DescuentoFijo:
		amount, ok := asNumber(rec[DescuentoMonto])
		if !ok || amount <= 0 {
			return domain.Validationf("%s must be a positive number", DescuentoMonto)
		}
	default:
		return domain.Validationf("%s must be %s or %s", TipoDescuento, DescuentoPorcentual, DescuentoFijo)
	}

	if !hasElements(rec[ProductosAplicables]) &&
		!hasElements(rec[CategoriasAplicables]) &&
		!hasElements(rec[MarcasAplicables]) {
		return domain.Validationf("promotion must reference at least one applicable product, category, or brand")
	}
	return nil
}

func hasElements(v any) bool {
	switch list := v.(type) {
	case []any:
		return len(list) > 0
	case []string:
		return len(list) > 0
	default:
		return false
	}
}
