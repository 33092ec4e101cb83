package main

import (
	"bytes"
	"conference-lab/domain"
	"conference-lab/runtime"
	"conference-lab/sink"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

var (
	localMark    = color.New(color.FgCyan, color.OpBold)
	pinnedMark   = color.New(color.FgYellow, color.OpBold)
	speakerMark  = color.New(color.FgGreen, color.OpBold)
	noEffectMark = color.New(color.FgGray)
	headerStyle  = color.New(color.BgBlack, color.FgGreen)
)

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderRoster(out io.Writer, q runtime.Query) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf(" Roster (%d) ", q.Count())))

	table := newTable(out, []string{"ID", "Name", "Role", "Connection", "Flags"})
	for _, p := range q.All() {
		table.Append([]string{p.ID, p.DisplayName, string(p.Role), string(p.ConnectionStatus), flags(p)})
	}
	table.Render()
}

func flags(p domain.Participant) string {
	var res string
	if p.Local {
		res += localMark.Render("local ")
	}
	if p.Pinned {
		res += pinnedMark.Render("pinned ")
	}
	if p.DominantSpeaker {
		res += speakerMark.Render("speaking ")
	}
	return res
}

func renderTimeline(out io.Writer, entries []sink.Entry) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render(" Timeline "))

	table := newTable(out, []string{"Seq", "Kind", "Target", "Count"})
	for _, e := range entries {
		target := e.ParticipantID
		if target == "" && e.Local {
			target = "(local)"
		}
		kind := string(e.Kind)
		if !e.Applied {
			kind = noEffectMark.Render(kind + " (no effect)")
		}
		table.Append([]string{strconv.FormatUint(e.Seq, 10), kind, target, strconv.Itoa(e.Count)})
	}
	table.Render()
}

// crossCheck rebuilds the registry from the session journal and compares it
// with the live snapshot.
func crossCheck(ctx context.Context, out io.Writer, o *runtime.Orchestrator, want int) error {
	deadline := time.Now().Add(2 * time.Second)
	for {
		replayed, lastSeq, err := o.Replay(ctx)
		if err != nil {
			return fmt.Errorf("journal replay: %w", err)
		}
		if lastSeq >= uint64(want) || time.Now().After(deadline) {
			live, err := json.Marshal(o.Snapshot())
			if err != nil {
				return err
			}
			rebuilt, err := json.Marshal(replayed)
			if err != nil {
				return err
			}
			if !bytes.Equal(live, rebuilt) {
				return fmt.Errorf("journal replay up to seq %d diverges from the live roster", lastSeq)
			}
			fmt.Fprintf(out, "journal replay matches live roster (seq %d)\n", lastSeq)
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}
