package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/findy-network/findy-wallet/cmds"
	walletcmd "github.com/findy-network/findy-wallet/cmds/wallet"
	"github.com/findy-network/findy-wallet/storage/sqlite"
	"github.com/findy-network/findy-wallet/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWallet(t *testing.T) cmds.Cmd {
	sc, err := json.Marshal(sqlite.Config{Path: t.TempDir()})
	require.NoError(t, err)
	c := cmds.Cmd{
		WalletName: "records",
		WalletKey:  wallet.GenerateKey("records"),
		KeyMethod:  "RAW",
		StorageCfg: string(sc),
	}
	_, err = walletcmd.CreateCmd{Cmd: c}.Exec(nil)
	require.NoError(t, err)
	return c
}

func TestRecordCommands(t *testing.T) {
	base := newWallet(t)

	for i := 0; i < 5; i++ {
		add := AddCmd{
			Cmd:   base,
			Type:  "note",
			ID:    fmt.Sprintf("n%d", i),
			Value: fmt.Sprintf("value %d", i),
			Tags:  fmt.Sprintf(`{"~n":"%d","kind":"memo"}`, i),
		}
		require.NoError(t, add.Validate())
		_, err := add.Exec(nil)
		require.NoError(t, err)
	}

	var out bytes.Buffer
	r, err := AddCmd{Cmd: base, Type: "note", Value: "generated"}.Exec(&out)
	require.NoError(t, err)
	assert.NotEmpty(t, r.(*Result).Records[0].ID)
	assert.Contains(t, out.String(), "record added:")

	get := GetCmd{Cmd: base, Type: "note", ID: "n3", Options: `{"retrieveTags":true}`}
	require.NoError(t, get.Validate())
	r, err = get.Exec(nil)
	require.NoError(t, err)
	item := r.(*Result).Records[0]
	require.NotNil(t, item.Value)
	assert.Equal(t, "value 3", *item.Value)
	assert.Equal(t, map[string]string{"~n": "3", "kind": "memo"}, item.Tags)

	search := SearchCmd{
		Cmd:     base,
		Type:    "note",
		Query:   `{"~n":{"$gte":"2"},"kind":"memo"}`,
		Options: `{"retrieveTotalCount":true}`,
	}
	require.NoError(t, search.Validate())
	r, err = search.Exec(nil)
	require.NoError(t, err)
	res := r.(*Result)
	require.NotNil(t, res.TotalCount)
	assert.Equal(t, 3, *res.TotalCount)
	assert.Len(t, res.Records, 3)

	search.Count = 2
	r, err = search.Exec(nil)
	require.NoError(t, err)
	assert.Len(t, r.(*Result).Records, 2)

	del := DeleteCmd{Cmd: base, Type: "note", ID: "n3"}
	require.NoError(t, del.Validate())
	_, err = del.Exec(nil)
	require.NoError(t, err)
	_, err = get.Exec(nil)
	assert.Error(t, err)
	_, err = del.Exec(nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := cmds.Cmd{WalletName: "w", WalletKey: "key"}
	tests := []struct {
		name string
		cmd  cmds.Command
		ok   bool
	}{
		{"add", AddCmd{Cmd: base, Type: "t"}, true},
		{"add no type", AddCmd{Cmd: base}, false},
		{"add bad tags", AddCmd{Cmd: base, Type: "t", Tags: `{"a":1}`}, false},
		{"get", GetCmd{Cmd: base, Type: "t", ID: "1"}, true},
		{"get no id", GetCmd{Cmd: base, Type: "t"}, false},
		{"get bad options", GetCmd{Cmd: base, Type: "t", ID: "1", Options: "{"}, false},
		{"delete no type", DeleteCmd{Cmd: base, ID: "1"}, false},
		{"search", SearchCmd{Cmd: base, Type: "t", Query: "{}"}, true},
		{"search bad query", SearchCmd{Cmd: base, Type: "t", Query: "{"}, false},
		{"search negative", SearchCmd{Cmd: base, Type: "t", Count: -1}, false},
		{"no wallet", SearchCmd{Type: "t"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
