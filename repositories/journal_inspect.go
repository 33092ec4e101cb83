package repositories

import (
	"conference-lab/domain/event"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mama165/sdk-go/database"
)

// StartInspector serves the journal content as an HTML table on port.
func (j *Journal) StartInspector(port int, endpoint string) {
	database.StartDebugServer(j.db, port, endpoint, JournalMapper)
}

// JournalMapper renders one journal entry for the debug inspector.
func JournalMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	var d diskRecord
	if err := json.Unmarshal(val, &d); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = string(d.Kind)
	row.Namespace = "seq " + strconv.FormatUint(d.Seq, 10)
	row.Timestamp = time.Unix(0, d.At).UTC().Format("15:04:05.000")
	row.Detail = string(d.Payload)

	evt, err := event.DecodePayload(d.Kind, d.Payload)
	if err != nil {
		return row
	}
	id, local := event.Target(evt)
	switch {
	case id != "":
		row.EntityID = id
	case local:
		row.EntityID = "(local)"
	}
	return row
}
