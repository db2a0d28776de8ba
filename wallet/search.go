package wallet

import (
	"context"
	"strings"
	"sync"

	"github.com/findy-network/findy-wallet/errs"
	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/wql"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// SearchHandle is an open search of a wallet. The numbers are per wallet.
type SearchHandle int32

type searchState int

const (
	searchOpen searchState = iota
	searchDraining
	searchClosed
)

type search struct {
	sync.Mutex
	state searchState
	typ   string
	opts  SearchOptions
	it    api.Iterator
}

// searchTable keeps closed searches too, that's how a second close is
// noticed.
type searchTable struct {
	sync.Mutex
	next SearchHandle
	m    map[SearchHandle]*search
}

func (t *searchTable) add(s *search) SearchHandle {
	t.Lock()
	defer t.Unlock()
	if t.m == nil {
		t.m = make(map[SearchHandle]*search)
	}
	t.next++
	t.m[t.next] = s
	return t.next
}

func (t *searchTable) get(sh SearchHandle) (*search, error) {
	t.Lock()
	defer t.Unlock()
	s, ok := t.m[sh]
	if !ok {
		return nil, errs.New(errs.InvalidHandle, "search handle %d", sh)
	}
	return s, nil
}

func (t *searchTable) closeAll() {
	t.Lock()
	defer t.Unlock()
	for _, s := range t.m {
		s.close()
	}
}

func (s *search) close() error {
	s.Lock()
	defer s.Unlock()
	if s.state == searchClosed {
		return nil
	}
	s.state = searchClosed
	return errs.FromStorage(s.it.Close())
}

// OpenSearch starts a search of the records of the type which match the WQL
// query. An empty query matches all.
func OpenSearch(ctx context.Context, h Handle, typ, query string, opts SearchOptions) (sh SearchHandle, err error) {
	defer err2.Handle(&err, "open search")

	if typ == "" {
		return 0, errs.New(errs.InputError, "record type missing")
	}
	if strings.HasPrefix(typ, ReservedPrefix) {
		return 0, errs.New(errs.AccessFailed, "record type %s is reserved", typ)
	}
	q, err := wql.Parse(query)
	if err != nil {
		return 0, errs.Wrap(errs.QueryError, err)
	}
	q = wql.Optimize(q)

	w, release := try.To2(acquire(h))
	defer release()

	var it api.Iterator
	switch {
	case q.IsFalse():
		it = &api.SliceIterator{Total: new(int)}
	default:
		var op *api.Operator
		if !q.IsTrue() {
			o := try.To1(w.codec.EncryptQuery(q))
			op = &o
		}
		et := try.To1(w.codec.EncryptType(typ))
		bo := opts.backend()
		bo.RetrieveType = false
		it, err = w.st.Search(ctx, et, op, bo)
		if err != nil {
			return 0, errs.FromStorage(err)
		}
	}
	sh = w.searches.add(&search{typ: typ, opts: opts, it: it})
	glog.V(5).Infoln("search", sh, "opened:", typ, q)
	return sh, nil
}

// FetchSearchNextRecords returns at most count next records. An empty result
// means the search is drained. No records are returned if they weren't
// requested in the options.
func FetchSearchNextRecords(ctx context.Context, h Handle, sh SearchHandle, count int) (recs []Record, err error) {
	defer err2.Handle(&err, "fetch search records")

	if count < 0 {
		return nil, errs.New(errs.InputError, "negative count %d", count)
	}
	w, release := try.To2(acquire(h))
	defer release()
	s := try.To1(w.searches.get(sh))

	s.Lock()
	defer s.Unlock()
	if s.state == searchClosed {
		return nil, errs.New(errs.InvalidHandle, "search handle %d closed", sh)
	}
	s.state = searchDraining
	if !s.opts.RetrieveRecords {
		return nil, nil
	}

	known := ""
	if s.opts.RetrieveType {
		known = s.typ
	}
	for len(recs) < count {
		r, err := s.it.Next(ctx)
		if err != nil {
			return recs, errs.FromStorage(err)
		}
		if r == nil {
			break
		}
		rec := try.To1(w.codec.DecryptRecord(r, known))
		recs = append(recs, *rec)
	}
	return recs, nil
}

// GetSearchTotalCount returns the count of all matching records. It's
// available only when it was requested in the options.
func GetSearchTotalCount(h Handle, sh SearchHandle) (n int, err error) {
	defer err2.Handle(&err, "search total count")

	w, release := try.To2(acquire(h))
	defer release()
	s := try.To1(w.searches.get(sh))

	s.Lock()
	defer s.Unlock()
	if s.state == searchClosed {
		return 0, errs.New(errs.InvalidHandle, "search handle %d closed", sh)
	}
	if !s.opts.RetrieveTotalCount {
		return 0, errs.New(errs.InvalidState, "total count not requested")
	}
	n, ok := s.it.TotalCount()
	if !ok {
		return 0, errs.New(errs.InvalidState, "total count not available")
	}
	return n, nil
}

// CloseSearch frees the search. Closing it again is fine.
func CloseSearch(h Handle, sh SearchHandle) (err error) {
	defer err2.Handle(&err, "close search")

	w, release := try.To2(acquire(h))
	defer release()
	s := try.To1(w.searches.get(sh))
	return s.close()
}
