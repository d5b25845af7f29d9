package idwrap

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/oklog/ulid/v2"
)

// IDWrap is the id type used for every editor-session entity: nodes,
// connections, comments, macros, variables and tabs. It wraps a ULID so ids
// sort by creation time and stay unique without coordination.
type IDWrap struct {
	ulid ulid.ULID
}

func New(u ulid.ULID) IDWrap {
	return IDWrap{ulid: u}
}

func NewNow() IDWrap {
	return IDWrap{ulid: ulid.Make()}
}

func NewText(ulidString string) (IDWrap, error) {
	u, err := ulid.Parse(ulidString)
	if err != nil {
		return IDWrap{}, err
	}
	return IDWrap{ulid: u}, nil
}

func NewTextMust(ulidString string) IDWrap {
	u, err := ulid.Parse(ulidString)
	if err != nil {
		panic(err)
	}
	return IDWrap{ulid: u}
}

func (u IDWrap) String() string {
	return u.ulid.String()
}

func (u IDWrap) Bytes() []byte {
	return u.ulid[:]
}

func (u IDWrap) Compare(id IDWrap) int {
	return u.ulid.Compare(id.ulid)
}

func (u IDWrap) IsZero() bool {
	return u == IDWrap{}
}

func (u IDWrap) Time() time.Time {
	return time.UnixMilli(int64(u.ulid.Time()))
}

// MarshalText makes IDWrap usable as a JSON value and as a JSON map key in
// the persisted asset documents.
func (u IDWrap) MarshalText() ([]byte, error) {
	return []byte(u.ulid.String()), nil
}

func (u *IDWrap) UnmarshalText(data []byte) error {
	parsed, err := ulid.Parse(string(data))
	if err != nil {
		return err
	}
	u.ulid = parsed
	return nil
}

// CopyConverter teaches jinzhu/copier to copy IDWrap values whole. Deep
// copies would otherwise drop the unexported ulid field and zero every id.
func CopyConverter() copier.TypeConverter {
	return copier.TypeConverter{
		SrcType: IDWrap{},
		DstType: IDWrap{},
		Fn: func(src any) (any, error) {
			return src, nil
		},
	}
}

