package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/contact"
	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/ledger"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/values"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
)

// Core contact columns the loader understands. Any further columns are
// carried through updates untouched.
const (
	colName    = "Name"
	colPhone   = "PhoneNumber"
	colEmail   = "Email"
	colCompany = "Company"
)

// CSVLedger is the tabular contact ledger: one row per contact, with status
// column groups per channel (e.g. CallStatus, CallNotes, CallLastUpdated).
// Rows are updated in place and never deleted.
type CSVLedger struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// OpenCSV wraps the ledger file at path. The file must already exist; this
// subsystem does not provision ledgers.
func OpenCSV(path string, logger *zap.Logger) (*CSVLedger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewPersistenceError("LEDGER_OPEN", fmt.Sprintf("ledger file not found: %s", path)).WithCause(err)
	}
	return &CSVLedger{path: path, logger: logger}, nil
}

// Contacts loads every parseable row as a Contact. Rows with an invalid
// phone number are skipped with a warning rather than failing the load.
func (l *CSVLedger) Contacts() ([]contact.Contact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	header, rows, err := l.read()
	if err != nil {
		return nil, err
	}

	nameIdx := indexOf(header, colName)
	phoneIdx := indexOf(header, colPhone)
	emailIdx := indexOf(header, colEmail)
	companyIdx := indexOf(header, colCompany)
	if phoneIdx < 0 {
		return nil, errors.NewPersistenceError("LEDGER_COLUMNS", fmt.Sprintf("ledger is missing the %s column", colPhone))
	}

	contacts := make([]contact.Contact, 0, len(rows))
	for i, row := range rows {
		c, err := contact.New(field(row, nameIdx), field(row, phoneIdx), field(row, emailIdx), field(row, companyIdx))
		if err != nil {
			l.logger.Warn("skipping unparseable ledger row",
				zap.Int("row", i+2),
				zap.Error(err))
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// Update finds the row matching the lookup and rewrites its status columns,
// leaving every other column exactly as read. No matching row reports
// (false, nil). Missing status columns are an error: adding columns is
// schema migration, not a status write.
func (l *CSVLedger) Update(_ context.Context, lookup domain.Lookup, update domain.StatusUpdate) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	header, rows, err := l.read()
	if err != nil {
		return false, err
	}

	prefix := update.Channel.ColumnPrefix()
	statusIdx := indexOf(header, prefix+"Status")
	notesIdx := indexOf(header, prefix+"Notes")
	updatedIdx := indexOf(header, prefix+"LastUpdated")
	if statusIdx < 0 || notesIdx < 0 || updatedIdx < 0 {
		return false, errors.NewPersistenceError("LEDGER_COLUMNS",
			fmt.Sprintf("ledger is missing the %sStatus/%sNotes/%sLastUpdated columns", prefix, prefix, prefix))
	}

	emailIdx := indexOf(header, colEmail)
	phoneIdx := indexOf(header, colPhone)

	matched := -1
	for i, row := range rows {
		if lookup.Email != "" && emailIdx >= 0 &&
			strings.EqualFold(strings.TrimSpace(field(row, emailIdx)), strings.TrimSpace(lookup.Email)) {
			matched = i
			break
		}
		if lookup.Phone != "" && phoneIdx >= 0 &&
			values.Normalize(field(row, phoneIdx)) == values.Normalize(lookup.Phone) {
			matched = i
			break
		}
	}
	if matched < 0 {
		return false, nil
	}

	rows[matched][statusIdx] = update.Status
	rows[matched][notesIdx] = update.Notes
	rows[matched][updatedIdx] = update.LastUpdated

	if err := l.write(header, rows); err != nil {
		return false, err
	}
	return true, nil
}

func (l *CSVLedger) read() ([]string, [][]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, nil, errors.NewPersistenceError("LEDGER_OPEN", "failed to open ledger").WithCause(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, errors.NewPersistenceError("LEDGER_READ", "failed to parse ledger").WithCause(err)
	}
	if len(records) == 0 {
		return nil, nil, errors.NewPersistenceError("LEDGER_EMPTY", "ledger has no header row")
	}
	return records[0], records[1:], nil
}

func (l *CSVLedger) write(header []string, rows [][]string) error {
	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.NewPersistenceError("LEDGER_WRITE", "failed to create ledger temp file").WithCause(err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return errors.NewPersistenceError("LEDGER_WRITE", "failed to write ledger header").WithCause(err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return errors.NewPersistenceError("LEDGER_WRITE", "failed to write ledger rows").WithCause(err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.NewPersistenceError("LEDGER_WRITE", "failed to flush ledger").WithCause(err)
	}
	if err := f.Close(); err != nil {
		return errors.NewPersistenceError("LEDGER_WRITE", "failed to close ledger temp file").WithCause(err)
	}

	if err := os.Rename(tmp, l.path); err != nil {
		return errors.NewPersistenceError("LEDGER_WRITE", "failed to replace ledger file").WithCause(err)
	}
	return nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

var _ domain.Store = (*CSVLedger)(nil)
