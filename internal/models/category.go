package models

// Field name constants for the ZTCATEGORIAS collection.
const (
	CategoriesCollection = "ZTCATEGORIAS"

	CatID      = "CATID"
	Nombre     = "Nombre"
	PadreCatID = "PadreCATID"
)

// Category describes a product category. PadreCATID forms a self-referential
// tree; the parent is stored without an existence check and cycles are not
// detected, matching the source system.
func Category() Entity {
	return Entity{
		Name:     CategoriesCollection,
		KeyField: CatID,
		Required: []string{CatID, Nombre},
	}
}
