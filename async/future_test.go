package async

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
)

func fillChannel(v any, ch Channel) {
	ch <- Result{V: v}
}

func TestFuture_GetValue_And_SetChan(t *testing.T) {
	myFuture := Future{}
	ch := make(Channel, 1)

	tests := []struct {
		name string
		want any
	}{
		{"1st", nil},
		{"2nd", 1},
		{"3rd", 1},
		{"4th", 2},
		{"5th", 2},
		{"6th", 3},
	}
	for i, tt := range tests {
		if i == 1 || i == 3 || i == 5 {
			myFuture.SetChan(ch)
			fillChannel(tt.want, ch)
		}
		t.Run(tt.name, func(t *testing.T) {
			if got := myFuture.value(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Future.value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFuture_SetChan_unread(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	f := NewFuture(make(Channel, 1))
	f.ch <- Result{V: "old"}
	ch := make(Channel, 1)
	f.SetChan(ch)
	ch <- Result{V: "new"}
	assert.Equal(f.Str(), "new")
}

func TestFuture_WithError(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	testErr := errors.New("TEST_ERROR")
	f := Go(func() (any, error) { return nil, testErr })

	readValue := func() (err error) {
		defer err2.Handle(&err)
		f.value()
		return nil
	}
	assert.That(errors.Is(readValue(), testErr))

	_, err := f.Result()
	assert.That(errors.Is(err, testErr))
	assert.That(f.On == Consumed)
}

func TestFuture_helpers(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	assert.Equal(Go(func() (any, error) { return 7, nil }).Int(), 7)
	assert.Equal(Go(func() (any, error) { return int32(8), nil }).Int(), 8)
	assert.Equal(Go(func() (any, error) { return "s", nil }).Str(), "s")
	assert.DeepEqual(Go(func() (any, error) { return []byte{1}, nil }).Bytes(), []byte{1})
	assert.Equal(Go(func() (any, error) { return nil, nil }).Int(), 0)

	f := &Future{}
	assert.That(f.IsEmpty())
	v, err := f.Result()
	assert.NoError(err)
	assert.That(v == nil)
}
