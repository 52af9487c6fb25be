package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var encodings = []Encoding{Packed, Borsh}

func TestCounterLayout(t *testing.T) {
	require := require.New(t)

	b, err := Packed.EncodeCounter(Counter{Count: 6})
	require.NoError(err)
	require.Equal([]byte{0, 0, 0, 6}, b)

	b, err = Borsh.EncodeCounter(Counter{Count: 6})
	require.NoError(err)
	require.Equal([]byte{6, 0, 0, 0}, b)
}

func TestCounterNextWraps(t *testing.T) {
	require := require.New(t)

	require.Equal(Counter{Count: 1}, Counter{}.Next())
	require.Equal(Counter{Count: 0}, Counter{Count: math.MaxUint32}.Next())
}

func TestDecodeCounter(t *testing.T) {
	for _, enc := range encodings {
		t.Run(enc.Name(), func(t *testing.T) {
			require := require.New(t)

			want := Counter{Count: 0x01020304}
			b, err := enc.EncodeCounter(want)
			require.NoError(err)

			// trailing account bytes are not part of the counter
			got, err := enc.DecodeCounter(append(b, 0xff, 0xff, 0xff))
			require.NoError(err)
			require.Equal(want, got)

			_, err = enc.DecodeCounter(b[:3])
			require.ErrorIs(err, ErrCounterTooShort)

			_, err = enc.DecodeCounter(nil)
			require.ErrorIs(err, ErrCounterTooShort)
		})
	}
}

func TestRecordLayout(t *testing.T) {
	require := require.New(t)

	r := ProofRecord{
		Proof:         []byte{1},
		VerifyingKey:  []byte{2, 3},
		PublicWitness: []byte{},
	}
	require.Equal(15, r.EncodedSize())

	b, err := Packed.EncodeRecord(r)
	require.NoError(err)
	require.Equal([]byte{
		0, 0, 0, 1, 1,
		0, 0, 0, 2, 2, 3,
		0, 0, 0, 0,
	}, b)

	b, err = Borsh.EncodeRecord(r)
	require.NoError(err)
	require.Equal([]byte{
		1, 0, 0, 0, 1,
		2, 0, 0, 0, 2, 3,
		0, 0, 0, 0,
	}, b)
}

func TestRecordRoundTrip(t *testing.T) {
	records := []ProofRecord{
		{Proof: []byte{}, VerifyingKey: []byte{}, PublicWitness: []byte{}},
		{Proof: []byte{1}, VerifyingKey: []byte{}, PublicWitness: []byte{}},
		{Proof: make([]byte, 300), VerifyingKey: []byte{9, 9}, PublicWitness: []byte{7}},
	}
	for _, enc := range encodings {
		for _, r := range records {
			b, err := enc.EncodeRecord(r)
			require.NoError(t, err)
			require.Len(t, b, r.EncodedSize())

			got, err := enc.DecodeRecord(b)
			require.NoError(t, err, enc.Name())
			require.Equal(t, r, got, enc.Name())
		}
	}
}

func TestDecodeRecordMalformed(t *testing.T) {
	tests := []struct {
		name    string
		packed  []byte
		borsh   []byte
		wantErr error
	}{
		{
			name:    "empty",
			packed:  nil,
			borsh:   nil,
			wantErr: ErrFieldOverrun,
		},
		{
			name:    "truncated prefix",
			packed:  []byte{0, 0},
			borsh:   []byte{0, 0},
			wantErr: ErrFieldOverrun,
		},
		{
			name:    "length past end",
			packed:  []byte{0, 0, 0, 9, 1, 2},
			borsh:   []byte{9, 0, 0, 0, 1, 2},
			wantErr: ErrFieldOverrun,
		},
		{
			name:    "huge length",
			packed:  []byte{0xff, 0xff, 0xff, 0xff},
			borsh:   []byte{0xff, 0xff, 0xff, 0xff},
			wantErr: ErrFieldOverrun,
		},
		{
			name:    "missing witness",
			packed:  []byte{0, 0, 0, 0, 0, 0, 0, 0},
			borsh:   []byte{0, 0, 0, 0, 0, 0, 0, 0},
			wantErr: ErrFieldOverrun,
		},
		{
			name:    "trailing bytes",
			packed:  []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5},
			borsh:   []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5},
			wantErr: ErrTrailingBytes,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Packed.DecodeRecord(tt.packed)
			require.ErrorIs(t, err, tt.wantErr)

			_, err = Borsh.DecodeRecord(tt.borsh)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeRecordPrefixIgnoresTail(t *testing.T) {
	for _, enc := range encodings {
		r := ProofRecord{Proof: []byte{1, 2}, VerifyingKey: []byte{3}, PublicWitness: []byte{4, 5, 6}}
		b, err := enc.EncodeRecord(r)
		require.NoError(t, err)

		buf := append(append([]byte{}, b...), 0xaa, 0xbb)
		got, n, err := enc.DecodeRecordPrefix(buf)
		require.NoError(t, err)
		require.Equal(t, len(b), n)
		require.Equal(t, r, got)

		// decoded fields must not alias the input
		buf[RecordHeaderSize-LengthPrefixSize*2] = 0xee
		require.Equal(t, []byte{1, 2}, got.Proof)
	}
}

func TestByName(t *testing.T) {
	require := require.New(t)

	enc, err := ByName("")
	require.NoError(err)
	require.Equal(Packed, enc)

	enc, err = ByName(" Borsh ")
	require.NoError(err)
	require.Equal(Borsh, enc)

	_, err = ByName("json")
	require.ErrorIs(err, ErrUnknownEncoding)
}
