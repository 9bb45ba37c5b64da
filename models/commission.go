package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// RegionID references a Location inside a commission table. It decodes from
// either a JSON number or a numeric string.
type RegionID uint

// UnmarshalJSON accepts 3 and "3" alike
func (r *RegionID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("regionId must not be null")
	}
	raw = strings.Trim(raw, `"`)
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid regionId %q", raw)
	}
	*r = RegionID(id)
	return nil
}

// RegionCommission is the commission paid for one phone model sold in one region
type RegionCommission struct {
	RegionID RegionID        `json:"regionId"`
	Amount   decimal.Decimal `json:"amount"`
}

// CommissionTable is the per-region commission list stored on a phone model
type CommissionTable []RegionCommission

// Resolve returns the amount of the first entry for regionID, or an invalid
// NullDecimal when the region has no entry.
func (t CommissionTable) Resolve(regionID uint) decimal.NullDecimal {
	for _, entry := range t {
		if uint(entry.RegionID) == regionID {
			return decimal.NewNullDecimal(entry.Amount)
		}
	}
	return decimal.NullDecimal{}
}

// Upsert overwrites the amount of the entry for regionID, appending one if
// the region is not yet present.
func (t CommissionTable) Upsert(regionID uint, amount decimal.Decimal) CommissionTable {
	for i := range t {
		if uint(t[i].RegionID) == regionID {
			t[i].Amount = amount
			return t
		}
	}
	return append(t, RegionCommission{RegionID: RegionID(regionID), Amount: amount})
}

// Value implements driver.Valuer
func (t CommissionTable) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode commissions: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *CommissionTable) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*t = DecodeCommissionTable(v)
	case string:
		*t = DecodeCommissionTable([]byte(v))
	default:
		*t = CommissionTable{}
	}
	return nil
}

// GormDBDataType stores the table as JSONB on postgres and TEXT elsewhere
func (CommissionTable) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "TEXT"
}

// DecodeCommissionTable decodes a stored commissions column. Older rows hold
// the array wrapped in a JSON string. Entries that do not decode are skipped;
// anything that is not an array decodes to an empty table.
func DecodeCommissionTable(raw []byte) CommissionTable {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		var wrapped string
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return CommissionTable{}
		}
		if err := json.Unmarshal([]byte(wrapped), &entries); err != nil {
			return CommissionTable{}
		}
	}

	table := make(CommissionTable, 0, len(entries))
	for _, entry := range entries {
		var rc RegionCommission
		if err := json.Unmarshal(entry, &rc); err != nil {
			continue
		}
		table = append(table, rc)
	}
	return table
}
