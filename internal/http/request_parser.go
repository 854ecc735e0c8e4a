// This file parses request data into engine inputs. UI sentinels ("all",
// empty string) are translated into omitted predicates here; the engine
// itself never sees them.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"smartledger/internal/core"
)

// errMalformedBody marks request bodies that could not be decoded at all.
var errMalformedBody = errors.New("malformed request body")

// filterAll is the query-parameter sentinel meaning "do not filter".
const filterAll = "all"

// maxImportBytes bounds backup uploads. Real backups run a few kilobytes
// per hundred entries; 16 MiB leaves generous headroom.
const maxImportBytes = 16 << 20

// ownerID extracts the authenticated owner from the request. Identity is
// established by the auth collaborator upstream; this service trusts the
// header it is handed.
func ownerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Owner-ID"))
}

// parseFilter builds a filter spec from list-query parameters.
func parseFilter(owner string, q url.Values) (core.Filter, error) {
	f := core.Filter{OwnerID: owner}

	if v := strings.TrimSpace(q.Get("kind")); v != "" && v != filterAll {
		f.Kind = core.Kind(v)
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" && v != filterAll {
		f.Category = v
	}
	f.Range.Start = strings.TrimSpace(q.Get("start"))
	f.Range.End = strings.TrimSpace(q.Get("end"))
	if v := strings.TrimSpace(q.Get("order")); v != "" {
		f.OrderBy = core.Order(v)
	}

	if err := f.Validate(); err != nil {
		return core.Filter{}, err
	}
	return f, nil
}

// chartRange extracts the required start/end pair for chart endpoints.
func chartRange(q url.Values) (start, end string) {
	return strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end"))
}

// flexAmount accepts an amount as either a JSON number or a string, since
// form-driven clients tend to send strings.
type flexAmount string

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = flexAmount(s)
		return nil
	}
	*a = flexAmount(b)
	return nil
}

type entryPayload struct {
	Kind          string     `json:"kind"`
	Category      string     `json:"category"`
	Amount        flexAmount `json:"amount"`
	Date          string     `json:"date"`
	Note          string     `json:"note"`
	AttachmentRef string     `json:"attachmentRef"`
}

// parseEntryBody decodes and validates an entry payload for the given
// owner. The returned entry carries no id; callers set it for updates.
func parseEntryBody(r *http.Request, owner string) (core.Entry, error) {
	var p entryPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return core.Entry{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(string(p.Amount)))
	if err != nil {
		return core.Entry{}, err
	}

	e := core.Entry{
		OwnerID:       owner,
		Kind:          core.Kind(strings.TrimSpace(p.Kind)),
		Category:      strings.TrimSpace(p.Category),
		Amount:        core.Money{Cents: cents},
		Date:          strings.TrimSpace(p.Date),
		Note:          p.Note,
		AttachmentRef: strings.TrimSpace(p.AttachmentRef),
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

// readImportBody reads a bounded backup document from the request.
func readImportBody(r *http.Request) ([]byte, error) {
	doc, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read import body: %w", err)
	}
	if len(doc) > maxImportBytes {
		return nil, fmt.Errorf("import body exceeds %d bytes", maxImportBytes)
	}
	return doc, nil
}

// clientIP extracts the originating address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return host
}
