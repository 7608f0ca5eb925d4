package ledger

import (
	"encoding/hex"
	"testing"
	"time"

	"bootsect/addr"
	"bootsect/image"
	"bootsect/manifest"
	"bootsect/testutil/testcrypto"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, name string, payload []byte) (*Record, image.BootImage) {
	img, err := image.BuildDefault(payload)
	require.NoError(t, err)
	m := manifest.New(name, time.Unix(1760486400, 0), img, addr.DefaultModel())
	signer := testcrypto.FixedSigner(t)
	sig, err := manifest.Sign(signer, m)
	require.NoError(t, err)
	return &Record{
		Manifest:          m,
		PublicKey:         hex.EncodeToString(signer.Pub().SerializeCompressed()),
		ManifestSignature: sig,
	}, img
}

func TestRecords_PutGet(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	for _, codecName := range []string{CodecNone, CodecS2, CodecLZ4} {
		t.Run(codecName, func(t *testing.T) {
			codec, err := GetCodec(codecName)
			require.NoError(t, err)
			name := "loop-" + codecName
			rec, img := newRecord(t, name, []byte{0xEB, 0xFE})

			_, err = GetRecord(db, name)
			require.True(t, errors.Is(err, ErrRecordNotFound))

			require.NoError(t, PutRecord(db, rec, img, codec))
			require.Equal(t, codecName, rec.Codec)
			require.Equal(t, img.Fingerprint(), rec.Fingerprint)

			actRec, err := GetRecord(db, name)
			require.NoError(t, err)
			require.Equal(t, rec.Name, actRec.Name)
			require.Equal(t, rec.BuiltAt.Unix(), actRec.BuiltAt.Unix())
			require.Equal(t, rec.ImageHash, actRec.ImageHash)
			require.Equal(t, rec.ManifestSignature, actRec.ManifestSignature)
			require.Equal(t, rec.Policy, actRec.Policy)
			require.Equal(t, rec.Fingerprint, actRec.Fingerprint)

			_, pub := testcrypto.FixedKey(t)
			require.True(t, manifest.Verify(pub, actRec.ManifestSignature, actRec.Manifest))

			actImg, err := GetImage(db, name)
			require.NoError(t, err)
			require.Equal(t, img.Bytes(), actImg.Bytes())
		})
	}

	count, err := GetRecordCount(db)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestRecords_Replace(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()
	codec, err := GetCodec(CodecS2)
	require.NoError(t, err)

	first, firstImg := newRecord(t, "stage1", []byte{0xEB, 0xFE})
	require.NoError(t, PutRecord(db, first, firstImg, codec))
	second, secondImg := newRecord(t, "stage1", []byte{0xFA, 0xF4})
	require.NoError(t, PutRecord(db, second, secondImg, codec))

	count, err := GetRecordCount(db)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	names, err := FindByFingerprint(db, firstImg.Fingerprint())
	require.NoError(t, err)
	require.Empty(t, names)
	names, err = FindByFingerprint(db, secondImg.Fingerprint())
	require.NoError(t, err)
	require.Equal(t, []string{"stage1"}, names)
}

func TestRecords_FindByFingerprint(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()
	codec, err := GetCodec(CodecS2)
	require.NoError(t, err)

	for _, name := range []string{"b", "a", "c"} {
		rec, img := newRecord(t, name, []byte{0xEB, 0xFE})
		require.NoError(t, PutRecord(db, rec, img, codec))
	}
	other, otherImg := newRecord(t, "other", []byte{0xF4})
	require.NoError(t, PutRecord(db, other, otherImg, codec))

	names, err := FindByFingerprint(db, other.Fingerprint)
	require.NoError(t, err)
	require.Equal(t, []string{"other"}, names)

	_, img := newRecord(t, "x", []byte{0xEB, 0xFE})
	names, err = FindByFingerprint(db, img.Fingerprint())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, names)
}

func TestRecords_Delete(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()
	codec, err := GetCodec(CodecNone)
	require.NoError(t, err)

	rec, img := newRecord(t, "gone", []byte{0xEB, 0xFE})
	require.NoError(t, PutRecord(db, rec, img, codec))
	require.NoError(t, DeleteRecord(db, "gone"))

	_, err = GetRecord(db, "gone")
	require.True(t, errors.Is(err, ErrRecordNotFound))
	_, err = GetImage(db, "gone")
	require.True(t, errors.Is(err, ErrRecordNotFound))
	names, err := FindByFingerprint(db, img.Fingerprint())
	require.NoError(t, err)
	require.Empty(t, names)
	count, err := GetRecordCount(db)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	require.True(t, errors.Is(DeleteRecord(db, "gone"), ErrRecordNotFound))
}

func TestRecords_Rejects(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()
	codec, err := GetCodec(CodecNone)
	require.NoError(t, err)

	rec, img := newRecord(t, "bad/name", []byte{0xEB, 0xFE})
	require.True(t, errors.Is(PutRecord(db, rec, img, codec), ErrInvalidName))

	rec, _ = newRecord(t, "mismatch", []byte{0xEB, 0xFE})
	_, otherImg := newRecord(t, "mismatch", []byte{0xF4})
	require.True(t, errors.Is(PutRecord(db, rec, otherImg, codec), ErrImageCorrupt))
}

func TestRecords_CorruptImage(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()
	codec, err := GetCodec(CodecNone)
	require.NoError(t, err)

	rec, img := newRecord(t, "flipped", []byte{0xEB, 0xFE})
	require.NoError(t, PutRecord(db, rec, img, codec))
	raw := img.Bytes()
	raw[0] = 0x90
	require.NoError(t, db.Put(imagePrefix("flipped"), raw, nil))

	_, err = GetImage(db, "flipped")
	require.True(t, errors.Is(err, ErrImageCorrupt))
}

func TestStreamRecords(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()
	codec, err := GetCodec(CodecS2)
	require.NoError(t, err)

	names := []string{"banner", "loop", "loop.v2", "read"}
	for _, name := range names {
		rec, img := newRecord(t, name, []byte{0xEB, 0xFE})
		require.NoError(t, PutRecord(db, rec, img, codec))
	}

	collect := func(start string) []string {
		stream, err := StreamRecords(db, start)
		require.NoError(t, err)
		var out []string
		for {
			rec, err := stream.Next()
			require.NoError(t, err)
			if rec == nil {
				break
			}
			out = append(out, rec.Name)
		}
		require.NoError(t, stream.Close())
		return out
	}

	require.Equal(t, names, collect(""))
	require.Equal(t, []string{"loop.v2", "read"}, collect("loop"))
	require.Empty(t, collect("read"))
}

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("stage1.loop-v2_x"))
	require.Error(t, ValidateName(""))
	require.Error(t, ValidateName("a b"))
	require.Error(t, ValidateName("a/b"))
}
