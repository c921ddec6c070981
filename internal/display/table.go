package display

import (
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

func renderParcelTable(parcels []*models.Parcel) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Tracking Number", "Company", "Courier", "Status", "ETA"})

	for _, p := range parcels {
		eta := "TBD"
		if p.ETA != nil && *p.ETA != "" {
			eta = *p.ETA
		}
		tw.AppendRow(table.Row{p.TrackingNumber, p.Company, p.Courier, p.Status, eta})
	}

	return tw.Render()
}
