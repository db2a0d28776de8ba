// Package record has the record commands of the CLI. Values are handled as
// strings, tags and queries as JSON.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/findy-network/findy-wallet/cmds"
	"github.com/findy-network/findy-wallet/utils"
	"github.com/findy-network/findy-wallet/wallet"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Item is a record with its value as a string.
type Item struct {
	Type  string            `json:"type,omitempty"`
	ID    string            `json:"id"`
	Value *string           `json:"value,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}

func newItem(r wallet.Record) Item {
	it := Item{Type: r.Type, ID: r.ID, Tags: r.Tags}
	if r.Value != nil {
		v := string(r.Value)
		it.Value = &v
	}
	return it
}

// Result is the output of the record commands.
type Result struct {
	TotalCount *int   `json:"totalCount,omitempty"`
	Records    []Item `json:"records"`
}

func (r *Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

type AddCmd struct {
	cmds.Cmd
	Type  string
	ID    string
	Value string
	Tags  string
}

func (c AddCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Type == "" {
		return errors.New("record type cannot be empty")
	}
	_, err := cmds.ValidateTags(c.Tags)
	return err
}

func (c AddCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "add record cmd")

	id := c.ID
	if id == "" {
		id = utils.UUID()
	}
	tags := try.To1(cmds.ValidateTags(c.Tags))
	ctx := context.Background()
	h, done := try.To2(c.Open(ctx))
	defer done()

	try.To(wallet.AddRecord(ctx, h, c.Type, id, []byte(c.Value), tags))
	cmds.Fprintln(w, "record added:", id)
	return &Result{Records: []Item{{Type: c.Type, ID: id}}}, nil
}

type GetCmd struct {
	cmds.Cmd
	Type    string
	ID      string
	Options string
}

func (c GetCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Type == "" || c.ID == "" {
		return errors.New("record type and id cannot be empty")
	}
	_, err := wallet.ParseRecordOptions(c.Options)
	return err
}

func (c GetCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "get record cmd")

	opts := try.To1(wallet.ParseRecordOptions(c.Options))
	ctx := context.Background()
	h, done := try.To2(c.Open(ctx))
	defer done()

	rec := try.To1(wallet.GetRecord(ctx, h, c.Type, c.ID, opts))
	res := &Result{Records: []Item{newItem(*rec)}}
	cmds.Fprintln(w, string(try.To1(res.JSON())))
	return res, nil
}

type DeleteCmd struct {
	cmds.Cmd
	Type string
	ID   string
}

func (c DeleteCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Type == "" || c.ID == "" {
		return errors.New("record type and id cannot be empty")
	}
	return nil
}

func (c DeleteCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "delete record cmd")

	ctx := context.Background()
	h, done := try.To2(c.Open(ctx))
	defer done()

	try.To(wallet.DeleteRecord(ctx, h, c.Type, c.ID))
	cmds.Fprintln(w, "record deleted:", c.ID)
	return r, nil
}

type SearchCmd struct {
	cmds.Cmd
	Type    string
	Query   string
	Options string
	Count   int
}

func (c SearchCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Type == "" {
		return errors.New("record type cannot be empty")
	}
	if c.Count < 0 {
		return errors.New("count cannot be negative")
	}
	if c.Query != "" && !json.Valid([]byte(c.Query)) {
		return errors.New("query must be JSON")
	}
	_, err := wallet.ParseSearchOptions(c.Options)
	return err
}

// Exec prints the found records. Count zero means all of them.
func (c SearchCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "search records cmd")

	opts := try.To1(wallet.ParseSearchOptions(c.Options))
	ctx := context.Background()
	h, done := try.To2(c.Open(ctx))
	defer done()

	sh := try.To1(wallet.OpenSearch(ctx, h, c.Type, c.Query, opts))
	defer wallet.CloseSearch(h, sh)

	res := &Result{Records: []Item{}}
	if opts.RetrieveTotalCount {
		n := try.To1(wallet.GetSearchTotalCount(h, sh))
		res.TotalCount = &n
	}
	const batch = 100
	for c.Count == 0 || len(res.Records) < c.Count {
		n := batch
		if c.Count > 0 && c.Count-len(res.Records) < n {
			n = c.Count - len(res.Records)
		}
		recs := try.To1(wallet.FetchSearchNextRecords(ctx, h, sh, n))
		if len(recs) == 0 {
			break
		}
		for _, rec := range recs {
			res.Records = append(res.Records, newItem(rec))
		}
	}
	cmds.Fprintln(w, string(try.To1(res.JSON())))
	return res, nil
}
