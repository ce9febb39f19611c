// Package domain models NOAA GSOD (Global Surface Summary of the Day)
// daily weather summaries and the fixed field mapping applied to them.
//
// # Data Source
//
// GSOD files are daily per-station summaries derived from ISD hourly
// observations, published by NOAA NCEI. The upstream dataset lands in an
// object store as Parquet files partitioned by year ("year=2022/"), with one
// row per station per day and a data catalog entry describing the table.
//
// # GSOD Conventions
//
// Dates:
//
//	The "date" column is a string in YYYY-MM-DD form. The transformation
//	renames it to "report_date" and reinterprets it as a calendar date,
//	which also becomes the partition key of the output table.
//
// Measurements:
//
//	All measurement columns are doubles: mean temperature and dew point
//	(°F), sea-level and station pressure (mbar), visibility (miles), mean
//	wind speed and gust (knots), daily max/min temperature, precipitation
//	(inches), and snow depth (inches). NOAA encodes missing values as
//	sentinels (9999.9, 999.9, 99.99) which pass through unchanged; the
//	mapping casts, it does not clean.
//
// Attribute flags:
//
//	max_attributes, min_attributes, and prcp_attributes are single-character
//	strings qualifying how the value was derived (e.g. "*" = derived from
//	hourly data, "G" = gauge). They are carried verbatim.
//
// # Field Mapping
//
// The transformation is declarative: an ordered list of
// (source, source type, target, target type) tuples. Every output field
// appears exactly once in the list; input fields absent from the list are
// dropped silently. Downstream consumers rely on the reduced schema, so the
// silent drop is contract, not accident.
package domain
