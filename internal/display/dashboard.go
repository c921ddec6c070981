package display

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

const (
	ansiClearScreen = "\x1b[2J\x1b[H"
	bannerWidth     = 80
)

type Lister interface {
	ListParcels(ctx context.Context, limit int) ([]*models.Parcel, int, error)
}

// Dashboard перерисовывает сводку по посылкам в терминале.
type Dashboard struct {
	lister Lister
	out    io.Writer

	maxRows      int
	refreshEvery time.Duration
}

func New(lister Lister, out io.Writer) *Dashboard {
	return &Dashboard{
		lister:       lister,
		out:          out,
		maxRows:      20,
		refreshEvery: 30 * time.Second,
	}
}

func (d *Dashboard) WithSettings(refreshEvery time.Duration, maxRows int) *Dashboard {
	if refreshEvery > 0 {
		d.refreshEvery = refreshEvery
	}
	if maxRows > 0 {
		d.maxRows = maxRows
	}
	return d
}

// RenderOnce выводит текущее состояние одним снимком.
func (d *Dashboard) RenderOnce(ctx context.Context) error {
	parcels, total, err := d.lister.ListParcels(ctx, d.maxRows)
	if err != nil {
		return errors.Wrap(err, "list parcels")
	}

	var b strings.Builder
	if total == 0 {
		b.WriteString("No parcels currently being tracked.\n")
		_, err = io.WriteString(d.out, b.String())
		return err
	}

	// Экран чистим только в живом терминале, чтобы не сорить в пайпы и логи.
	if isTerminal(d.out) {
		b.WriteString(ansiClearScreen)
	}

	banner := strings.Repeat("=", bannerWidth)
	b.WriteString(banner + "\n")
	b.WriteString("PARCEL TRACKING DASHBOARD\n")
	b.WriteString(banner + "\n")
	b.WriteString("Last updated: " + time.Now().Format("2006-01-02 15:04:05") + "\n\n")

	b.WriteString(renderParcelTable(parcels))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Showing %d of %d parcels\n", len(parcels), total))
	if total > len(parcels) {
		b.WriteString(fmt.Sprintf("(Limited to %d parcels - see config to adjust)\n", d.maxRows))
	}
	b.WriteString(fmt.Sprintf("Next refresh in %d seconds (Ctrl+C to exit)\n", int(d.refreshEvery.Seconds())))

	_, err = io.WriteString(d.out, b.String())
	return err
}

// Run перерисовывает сводку каждые refreshEvery до отмены контекста.
// Ошибка отрисовки не останавливает цикл.
func (d *Dashboard) Run(ctx context.Context) error {
	t := time.NewTicker(d.refreshEvery)
	defer t.Stop()

	for {
		if err := d.RenderOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("render dashboard", "error", err.Error())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
