package models

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FuelLogSort is a sortable fuel-log column.
type FuelLogSort string

const (
	FuelLogSortRefueledAt FuelLogSort = "refueledAt"
	FuelLogSortMileage    FuelLogSort = "mileage"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FuelLogQuery holds normalized paging and sorting for fuel-log listing.
// Out-of-range values are clamped rather than rejected.
type FuelLogQuery struct {
	Page      int
	PageSize  int
	SortBy    FuelLogSort
	SortOrder SortOrder
}

// NewFuelLogQuery normalizes raw query values: page >= 1 (default 1),
// pageSize in [1,100] (default 20), sort refueledAt desc by default.
func NewFuelLogQuery(page, pageSize int, sortBy, sortOrder string) FuelLogQuery {
	q := FuelLogQuery{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    FuelLogSortRefueledAt,
		SortOrder: SortDesc,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if FuelLogSort(sortBy) == FuelLogSortMileage {
		q.SortBy = FuelLogSortMileage
	}
	if SortOrder(sortOrder) == SortAsc {
		q.SortOrder = SortAsc
	}
	return q
}

// Offset is the number of rows to skip for the requested page.
func (q FuelLogQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// BikeSort is a sortable catalog column.
type BikeSort string

const (
	BikeSortModelName    BikeSort = "modelName"
	BikeSortDisplacement BikeSort = "displacement"
	BikeSortModelYear    BikeSort = "modelYear"
)

// BikeSearchParams filters the catalog search. Zero values mean "no filter".
type BikeSearchParams struct {
	ManufacturerID  string
	ModelName       string
	DisplacementMin int
	DisplacementMax int
	ModelYearMin    int
	ModelYearMax    int
	Page            int
	PageSize        int
	SortBy          BikeSort
	SortOrder       SortOrder
}

// Normalize clamps paging and defaults sorting to modelName asc.
func (p BikeSearchParams) Normalize() BikeSearchParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	switch p.SortBy {
	case BikeSortDisplacement, BikeSortModelYear:
	default:
		p.SortBy = BikeSortModelName
	}
	if p.SortOrder != SortDesc {
		p.SortOrder = SortAsc
	}
	return p
}

// Offset is the number of rows to skip for the requested page.
func (p BikeSearchParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
