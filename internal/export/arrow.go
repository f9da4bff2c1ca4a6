// Package export writes filtered views in columnar interchange formats.
package export

import (
	"io"

	"salarydash/internal/engine"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/pkg/errors"
)

// ArrowStreamMIME is the media type of the IPC streaming format.
const ArrowStreamMIME = "application/vnd.apache.arrow.stream"

// BatchSize bounds the rows per record batch.
const BatchSize = 4096

// Schema is the column layout of an exported view.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "year", Type: arrow.PrimitiveTypes.Int32},
	{Name: "seniority", Type: arrow.BinaryTypes.String},
	{Name: "contract_type", Type: arrow.BinaryTypes.String},
	{Name: "company_size", Type: arrow.BinaryTypes.String},
	{Name: "role", Type: arrow.BinaryTypes.String},
	{Name: "remote_type", Type: arrow.BinaryTypes.String},
	{Name: "residence_country_code", Type: arrow.BinaryTypes.String},
	{Name: "salary_usd", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteArrow streams the view as Arrow IPC record batches. An empty view
// still produces a valid stream carrying only the schema.
func WriteArrow(w io.Writer, v engine.View) error {
	mem := memory.NewGoAllocator()
	iw := ipc.NewWriter(w, ipc.WithSchema(Schema), ipc.WithAllocator(mem))

	b := array.NewRecordBuilder(mem, Schema)
	defer b.Release()

	for start := 0; start < v.Len(); start += BatchSize {
		end := min(start+BatchSize, v.Len())
		rec := buildBatch(b, v, start, end)
		err := iw.Write(rec)
		rec.Release()
		if err != nil {
			iw.Close()
			return errors.Wrap(err, "write arrow batch")
		}
	}
	return errors.Wrap(iw.Close(), "close arrow stream")
}

func buildBatch(b *array.RecordBuilder, v engine.View, start, end int) arrow.Record {
	cs := v.Store()
	years := b.Field(0).(*array.Int32Builder)
	seniority := b.Field(1).(*array.StringBuilder)
	contract := b.Field(2).(*array.StringBuilder)
	size := b.Field(3).(*array.StringBuilder)
	role := b.Field(4).(*array.StringBuilder)
	remote := b.Field(5).(*array.StringBuilder)
	country := b.Field(6).(*array.StringBuilder)
	salary := b.Field(7).(*array.Float64Builder)

	n := end - start
	for _, fb := range b.Fields() {
		fb.Reserve(n)
	}
	for k := start; k < end; k++ {
		i := v.Row(k)
		years.Append(cs.Years[i])
		seniority.Append(cs.SeniorityDict[cs.SeniorityIDs[i]])
		contract.Append(cs.ContractDict[cs.ContractIDs[i]])
		size.Append(cs.SizeDict[cs.SizeIDs[i]])
		role.Append(cs.RoleDict[cs.RoleIDs[i]])
		remote.Append(cs.RemoteDict[cs.RemoteIDs[i]])
		country.Append(cs.CountryDict[cs.CountryIDs[i]])
		salary.Append(cs.Salaries[i])
	}
	return b.NewRecord()
}
