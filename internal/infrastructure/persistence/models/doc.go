// Package models contains the GORM persistence models that map to database tables.
// Models are kept apart from domain entities so the domain stays free of ORM tags.
//
// Each model offers ToDomain and a XModelFromDomain constructor; repositories
// only ever hand domain types across the package boundary.
package models
