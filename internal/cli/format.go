package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/homebid/internal/auth"
	"github.com/evcraddock/homebid/internal/bid"
	"github.com/evcraddock/homebid/internal/contract"
	"github.com/evcraddock/homebid/internal/property"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes rows under header as aligned columns, followed by a total line.
func table(w io.Writer, header []string, rows [][]string, noun string) error {
	if len(rows) == 0 {
		fmt.Fprintf(w, "No %s found.\n", noun)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	sep := make([]string, len(header))
	for i, h := range header {
		sep[i] = strings.Repeat("-", len(h))
	}
	for _, line := range append([][]string{header, sep}, rows...) {
		if _, err := fmt.Fprintln(tw, strings.Join(line, "\t")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(w, "\nTotal: %d %s\n", len(rows), noun)
	return nil
}

// printPropertySummary prints a single property in text format.
func printPropertySummary(w io.Writer, p *property.Property) {
	fmt.Fprintf(w, "Property %s\n", p.ID)
	fmt.Fprintf(w, "  Title:    %s\n", p.Title)
	fmt.Fprintf(w, "  Listing:  %s (%s)\n", p.ListingType, p.PropertyType)
	fmt.Fprintf(w, "  Price:    $%s\n", formatPrice(p.Price))
	fmt.Fprintf(w, "  Location: %s\n", formatLocation(p))
	fmt.Fprintf(w, "  Area:     %g\n", p.Area)
	if p.Bedrooms != nil {
		fmt.Fprintf(w, "  Beds:     %d\n", *p.Bedrooms)
	}
	if p.Bathrooms != nil {
		fmt.Fprintf(w, "  Baths:    %g\n", *p.Bathrooms)
	}
	if len(p.Features) > 0 {
		fmt.Fprintf(w, "  Features: %s\n", strings.Join(p.Features, "; "))
	}
	if len(p.Images) > 0 {
		fmt.Fprintf(w, "  Images:   %d\n", len(p.Images))
	}
	fmt.Fprintf(w, "  Status:   %s\n", p.Status)
	fmt.Fprintf(w, "  Owner:    %s\n", p.OwnerID)
	fmt.Fprintf(w, "  Listed:   %s\n", formatTime(p.ListedAt))
	if p.Description != nil && *p.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", *p.Description)
	}
}

// printPropertyTable prints a list of properties as a formatted table.
func printPropertyTable(w io.Writer, props []*property.Property) error {
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{
			p.ID, truncate(p.Title, 32), p.ListingType, "$" + formatPrice(p.Price),
			truncate(p.City+", "+p.State, 24), p.Status,
		})
	}
	return table(w, []string{"ID", "TITLE", "TYPE", "PRICE", "LOCATION", "STATUS"}, rows, "properties")
}

// printBidTable prints a list of bids as a formatted table.
func printBidTable(w io.Writer, bids []*bid.Bid) error {
	rows := make([][]string, 0, len(bids))
	for _, b := range bids {
		msg := "-"
		if b.Message != nil && *b.Message != "" {
			msg = truncate(*b.Message, 30)
		}
		rows = append(rows, []string{
			b.ID, b.PropertyID, b.UserID, "$" + formatPrice(b.Amount), b.Status, formatTime(b.Timestamp), msg,
		})
	}
	return table(w, []string{"ID", "PROPERTY", "BIDDER", "AMOUNT", "STATUS", "PLACED", "MESSAGE"}, rows, "bids")
}

// printContractTable prints a list of contracts as a formatted table.
func printContractTable(w io.Writer, contracts []*contract.Contract) error {
	rows := make([][]string, 0, len(contracts))
	for _, c := range contracts {
		rows = append(rows, []string{
			c.ID, c.PropertyID, c.OwnerID, c.AgentID, fmt.Sprintf("%g%%", c.Commission), c.Status,
			formatDate(c.StartDate) + " - " + formatDate(c.EndDate),
		})
	}
	return table(w, []string{"ID", "PROPERTY", "OWNER", "AGENT", "COMMISSION", "STATUS", "TERM"}, rows, "contracts")
}

// printUserTable prints a list of users as a formatted table.
func printUserTable(w io.Writer, users []*auth.User) error {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Username, u.Email, string(u.Role), formatTime(u.CreatedAt)})
	}
	return table(w, []string{"ID", "USERNAME", "EMAIL", "ROLE", "CREATED"}, rows, "users")
}

// formatPrice formats a dollar amount with thousands separators. Cents are
// shown only when present.
func formatPrice(dollars float64) string {
	neg := dollars < 0
	dollars = math.Abs(dollars)
	whole := math.Floor(dollars)
	cents := int64(math.Round((dollars - whole) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	s := fmt.Sprintf("%.0f", whole)

	// Add commas
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if cents > 0 {
		out += fmt.Sprintf(".%02d", cents)
	}
	if neg {
		out = "-" + out
	}
	return out
}

func formatLocation(p *property.Property) string {
	var parts []string
	if p.Street != nil && *p.Street != "" {
		parts = append(parts, *p.Street)
	}
	parts = append(parts, p.City, p.State)
	loc := strings.Join(parts, ", ")
	if p.ZipCode != nil && *p.ZipCode != "" {
		loc += " " + *p.ZipCode
	}
	return loc
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return t.Format("2006-01-02")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
