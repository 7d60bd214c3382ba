package services

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/pricing"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/utils"
)

// appendRange covers the positional order columns A-N.
const appendRange = "A:N"

// SheetsSink appends confirmed orders to a Google Sheet. The row layout is
// positional and must match the sheet's column order exactly.
type SheetsSink struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewSheetsSink authorizes against the Sheets API with the service-account
// credentials from configuration.
func NewSheetsSink(ctx context.Context, cfg *config.Config) (*SheetsSink, error) {
	if cfg.GoogleCredsJSON == "" || cfg.GoogleSheetID == "" {
		return nil, fmt.Errorf("google sheets not configured")
	}

	srv, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.GoogleCredsJSON)),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	log.Printf("✅ Google Sheets connected: %s", cfg.GoogleSheetID)
	return &SheetsSink{srv: srv, spreadsheetID: cfg.GoogleSheetID}, nil
}

// AppendOrder inserts one order row. Columns: order id, name, bundles, unit
// price, total, discount percent, address, postcode, delivery slot, phone,
// status, created at, updated at, notes.
func (s *SheetsSink) AppendOrder(ctx context.Context, phone string, order *models.Order, breakdown pricing.Breakdown) error {
	row := []interface{}{
		order.OrderID,
		order.Name,
		order.Bundles,
		breakdown.UnitPrice,
		breakdown.Total,
		breakdown.DiscountPercent,
		order.Address,
		order.Postcode,
		order.DeliverySlot,
		utils.FormatPhone(phone),
		order.Status,
		order.Timestamp,
		order.Timestamp,
		"",
	}

	_, err := s.srv.Spreadsheets.Values.
		Append(s.spreadsheetID, appendRange, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append order row: %w", err)
	}
	return nil
}
