package domain

import (
	"fmt"
	"sort"
)

// Partition is the set of transformed records sharing one report_date.
// Records keep their input order within the partition.
type Partition struct {
	Date    Date
	Records []Record
}

// Batch is the full transformed record set of one run, grouped into one
// partition per distinct report_date, sorted by date for deterministic
// writes and catalog calls.
type Batch struct {
	Schema     Schema
	Partitions []Partition
}

// GroupByDate splits transformed records into date partitions keyed by the
// partition field. Every record must carry a Date value for that field.
func GroupByDate(schema Schema, records []Record) (Batch, error) {
	byDate := make(map[Date]*Partition)
	var order []Date

	for i, rec := range records {
		v, ok := rec[PartitionField]
		if !ok {
			return Batch{}, fmt.Errorf("%w: record %d has no %s field", ErrSchemaMismatch, i, PartitionField)
		}
		d, ok := v.(Date)
		if !ok {
			return Batch{}, fmt.Errorf("%w: record %d %s is %T, not a date", ErrCast, i, PartitionField, v)
		}

		p, seen := byDate[d]
		if !seen {
			p = &Partition{Date: d}
			byDate[d] = p
			order = append(order, d)
		}
		p.Records = append(p.Records, rec)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	batch := Batch{Schema: schema, Partitions: make([]Partition, len(order))}
	for i, d := range order {
		batch.Partitions[i] = *byDate[d]
	}
	return batch, nil
}

// RecordCount returns the total number of records across all partitions.
func (b Batch) RecordCount() int {
	n := 0
	for _, p := range b.Partitions {
		n += len(p.Records)
	}
	return n
}
