package services

// Services defined in this package:
// - CatalogService: loads the course catalog and answers browser queries
// - TimetableService: rebuilds selections from share codes, edits and exports them
