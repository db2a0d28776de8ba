package wallet

import (
	"context"
	"strings"

	"github.com/findy-network/findy-wallet/errs"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// ReservedPrefix starts the record types which only System can touch.
const ReservedPrefix = "Indy"

// Access runs the record operations. The package level functions use the
// user access which refuses the reserved record types, System allows them.
type Access struct {
	privileged bool
}

// System is the access of the wallet internals like import.
var System = Access{privileged: true}

var user Access

func (a Access) check(typ, id string) error {
	if typ == "" {
		return errs.New(errs.InputError, "record type missing")
	}
	if id == "" {
		return errs.New(errs.InputError, "record id missing")
	}
	if !a.privileged && strings.HasPrefix(typ, ReservedPrefix) {
		return errs.New(errs.AccessFailed, "record type %s is reserved", typ)
	}
	return nil
}

// AddRecord adds the record. An existing type and id pair fails with
// ItemAlreadyExists.
func (a Access) AddRecord(
	ctx context.Context,
	h Handle,
	typ, id string,
	value []byte,
	tags map[string]string,
) (err error) {
	defer err2.Handle(&err, "add record")

	try.To(a.check(typ, id))
	w, release := try.To2(acquire(h))
	defer release()

	et := try.To1(w.codec.EncryptType(typ))
	eid := try.To1(w.codec.EncryptID(id))
	ev := try.To1(w.codec.EncryptValue(value))
	etags := try.To1(w.codec.EncryptTags(tags))
	return errs.FromStorage(w.st.Add(ctx, et, eid, ev, etags))
}

// UpdateRecordValue replaces the value of the record.
func (a Access) UpdateRecordValue(ctx context.Context, h Handle, typ, id string, value []byte) (err error) {
	defer err2.Handle(&err, "update record value")

	try.To(a.check(typ, id))
	w, release := try.To2(acquire(h))
	defer release()

	et := try.To1(w.codec.EncryptType(typ))
	eid := try.To1(w.codec.EncryptID(id))
	ev := try.To1(w.codec.EncryptValue(value))
	return errs.FromStorage(w.st.Update(ctx, et, eid, ev))
}

// UpdateRecordTags replaces all the tags of the record.
func (a Access) UpdateRecordTags(ctx context.Context, h Handle, typ, id string, tags map[string]string) (err error) {
	defer err2.Handle(&err, "update record tags")

	try.To(a.check(typ, id))
	w, release := try.To2(acquire(h))
	defer release()

	et := try.To1(w.codec.EncryptType(typ))
	eid := try.To1(w.codec.EncryptID(id))
	etags := try.To1(w.codec.EncryptTags(tags))
	return errs.FromStorage(w.st.UpdateTags(ctx, et, eid, etags))
}

// AddRecordTags merges the tags to the record. If the record already has a
// tag of the same name, nothing is added and the error is ItemAlreadyExists.
func (a Access) AddRecordTags(ctx context.Context, h Handle, typ, id string, tags map[string]string) (err error) {
	defer err2.Handle(&err, "add record tags")

	try.To(a.check(typ, id))
	w, release := try.To2(acquire(h))
	defer release()

	et := try.To1(w.codec.EncryptType(typ))
	eid := try.To1(w.codec.EncryptID(id))
	etags := try.To1(w.codec.EncryptTags(tags))
	return errs.FromStorage(w.st.AddTags(ctx, et, eid, etags))
}

// DeleteRecordTags removes the named tags. Missing names are ignored.
func (a Access) DeleteRecordTags(ctx context.Context, h Handle, typ, id string, names []string) (err error) {
	defer err2.Handle(&err, "delete record tags")

	try.To(a.check(typ, id))
	w, release := try.To2(acquire(h))
	defer release()

	et := try.To1(w.codec.EncryptType(typ))
	eid := try.To1(w.codec.EncryptID(id))
	enames := try.To1(w.codec.EncryptTagNames(names))
	return errs.FromStorage(w.st.DeleteTags(ctx, et, eid, enames))
}

// DeleteRecord removes the record.
func (a Access) DeleteRecord(ctx context.Context, h Handle, typ, id string) (err error) {
	defer err2.Handle(&err, "delete record")

	try.To(a.check(typ, id))
	w, release := try.To2(acquire(h))
	defer release()

	et := try.To1(w.codec.EncryptType(typ))
	eid := try.To1(w.codec.EncryptID(id))
	return errs.FromStorage(w.st.Delete(ctx, et, eid))
}

// GetRecord returns the record. The parts not selected by opts are left
// empty, the id is always there.
func (a Access) GetRecord(ctx context.Context, h Handle, typ, id string, opts RecordOptions) (_ *Record, err error) {
	defer err2.Handle(&err, "get record")

	try.To(a.check(typ, id))
	w, release := try.To2(acquire(h))
	defer release()

	et := try.To1(w.codec.EncryptType(typ))
	eid := try.To1(w.codec.EncryptID(id))
	bo := opts.backend()
	bo.RetrieveType = false
	r, err := w.st.Get(ctx, et, eid, bo)
	if err != nil {
		return nil, errs.FromStorage(err)
	}
	known := ""
	if opts.RetrieveType {
		known = typ
	}
	return w.codec.DecryptRecord(r, known)
}

func AddRecord(ctx context.Context, h Handle, typ, id string, value []byte, tags map[string]string) error {
	return user.AddRecord(ctx, h, typ, id, value, tags)
}

func UpdateRecordValue(ctx context.Context, h Handle, typ, id string, value []byte) error {
	return user.UpdateRecordValue(ctx, h, typ, id, value)
}

func UpdateRecordTags(ctx context.Context, h Handle, typ, id string, tags map[string]string) error {
	return user.UpdateRecordTags(ctx, h, typ, id, tags)
}

func AddRecordTags(ctx context.Context, h Handle, typ, id string, tags map[string]string) error {
	return user.AddRecordTags(ctx, h, typ, id, tags)
}

func DeleteRecordTags(ctx context.Context, h Handle, typ, id string, names []string) error {
	return user.DeleteRecordTags(ctx, h, typ, id, names)
}

func DeleteRecord(ctx context.Context, h Handle, typ, id string) error {
	return user.DeleteRecord(ctx, h, typ, id)
}

func GetRecord(ctx context.Context, h Handle, typ, id string, opts RecordOptions) (*Record, error) {
	return user.GetRecord(ctx, h, typ, id, opts)
}
