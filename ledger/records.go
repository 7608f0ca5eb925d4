package ledger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"sync"

	"bootsect/crypto"
	"bootsect/image"
	"bootsect/manifest"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	ErrRecordNotFound = errors.New("build record not found")
	ErrInvalidName    = errors.New("invalid build name")
	ErrImageCorrupt   = errors.New("stored image does not match its record")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Record is one build as seen by the ledger.
type Record struct {
	manifest.Manifest
	Fingerprint       uint64           `json:"fingerprint"`
	PublicKey         string           `json:"public_key"`
	ManifestSignature crypto.Signature `json:"manifest_signature"`
	Codec             string           `json:"codec"`
	StoredLen         int              `json:"stored_len"`
}

func (r *Record) FingerprintHex() string {
	return fmt.Sprintf("%016x", r.Fingerprint)
}

var (
	buildsPrefix      = Prefixer("builds")
	recordCountKey    = Prefixer(string(buildsPrefix("count")))()
	recordPrefix      = Prefixer(string(buildsPrefix("record")))
	imagePrefix       = Prefixer(string(buildsPrefix("image")))
	fingerprintPrefix = Prefixer(string(buildsPrefix("fingerprint")))
)

func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return errors.Wrap(ErrInvalidName, strconv.Quote(name))
	}
	return nil
}

func GetRecordCount(db *leveldb.DB) (int, error) {
	res, err := db.Get(recordCountKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "error getting record count")
	}
	return mustDecodeInt(res), nil
}

var countMu sync.Mutex

func addRecordCount(tx *leveldb.Transaction, delta int) error {
	countMu.Lock()
	defer countMu.Unlock()
	count, err := tx.Get(recordCountKey, nil)
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return errors.Wrap(err, "error getting record count")
	}
	if err := tx.Put(recordCountKey, mustEncodeInt(mustDecodeInt(count)+delta), nil); err != nil {
		return errors.Wrap(err, "error putting record count")
	}
	return nil
}

// PutRecord stores rec and img, replacing any record of the same name.
// rec's fingerprint, codec and stored length are filled in from img.
func PutRecord(db *leveldb.DB, rec *Record, img image.BootImage, codec Codec) error {
	return WithTx(db, func(tx *leveldb.Transaction) error {
		return PutRecordTx(tx, rec, img, codec)
	})
}

func PutRecordTx(tx *leveldb.Transaction, rec *Record, img image.BootImage, codec Codec) error {
	if err := ValidateName(rec.Name); err != nil {
		return err
	}
	if !rec.Manifest.Matches(img) {
		return errors.Wrap(ErrImageCorrupt, "manifest does not describe image")
	}

	stored, err := codec.Compress(img.Bytes())
	if err != nil {
		return err
	}
	rec.Codec = codec.Name()
	if stored == nil || len(stored) >= img.Len() {
		stored = img.Bytes()
		rec.Codec = CodecNone
	}
	rec.StoredLen = len(stored)
	rec.Fingerprint = img.Fingerprint()

	prev, err := getRecord(tx, rec.Name)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return err
	}
	if prev != nil {
		if err := tx.Delete(fingerprintPrefix(prev.FingerprintHex(), prev.Name), nil); err != nil {
			return errors.Wrap(err, "error deleting stale fingerprint")
		}
	} else if err := addRecordCount(tx, 1); err != nil {
		return err
	}

	if err := tx.Put(recordPrefix(rec.Name), mustMarshalJSON(rec), nil); err != nil {
		return errors.Wrap(err, "error writing record")
	}
	if err := tx.Put(imagePrefix(rec.Name), stored, nil); err != nil {
		return errors.Wrap(err, "error writing image")
	}
	if err := tx.Put(fingerprintPrefix(rec.FingerprintHex(), rec.Name), nil, nil); err != nil {
		return errors.Wrap(err, "error writing fingerprint")
	}
	logger.Debug(
		"recorded build",
		"name", rec.Name,
		"codec", rec.Codec,
		"stored_len", rec.StoredLen,
		"fingerprint", rec.FingerprintHex(),
	)
	return nil
}

type getter interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
}

func getRecord(g getter, name string) (*Record, error) {
	data, err := g.Get(recordPrefix(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Wrap(ErrRecordNotFound, name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "error getting record")
	}
	rec := new(Record)
	mustUnmarshalJSON(data, rec)
	return rec, nil
}

func GetRecord(db *leveldb.DB, name string) (*Record, error) {
	return getRecord(db, name)
}

// GetImage returns the stored image of name after checking it against its
// record.
func GetImage(db *leveldb.DB, name string) (image.BootImage, error) {
	rec, err := GetRecord(db, name)
	if err != nil {
		return image.BootImage{}, err
	}
	stored, err := db.Get(imagePrefix(name), nil)
	if err != nil {
		return image.BootImage{}, errors.Wrap(err, "error getting image")
	}
	codec, err := GetCodec(rec.Codec)
	if err != nil {
		return image.BootImage{}, err
	}
	raw, err := codec.Decompress(stored, int(rec.SectorSize))
	if err != nil {
		return image.BootImage{}, errors.Wrap(ErrImageCorrupt, err.Error())
	}
	img, err := image.Load(raw, uint(rec.SectorSize), rec.Signature)
	if err != nil {
		return image.BootImage{}, errors.Wrap(ErrImageCorrupt, err.Error())
	}
	if !rec.Manifest.Matches(img) {
		return image.BootImage{}, ErrImageCorrupt
	}
	return img, nil
}

// FindByFingerprint returns the names of every build whose image has the
// given fingerprint, in name order.
func FindByFingerprint(db *leveldb.DB, fingerprint uint64) ([]string, error) {
	prefix := fingerprintPrefix(fmt.Sprintf("%016x", fingerprint), "")
	iter := db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	var names []string
	for iter.Next() {
		names = append(names, string(iter.Key()[len(prefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "error iterating fingerprints")
	}
	return names, nil
}

func DeleteRecord(db *leveldb.DB, name string) error {
	return WithTx(db, func(tx *leveldb.Transaction) error {
		rec, err := getRecord(tx, name)
		if err != nil {
			return err
		}
		keys := [][]byte{
			recordPrefix(name),
			imagePrefix(name),
			fingerprintPrefix(rec.FingerprintHex(), name),
		}
		for _, k := range keys {
			if err := tx.Delete(k, nil); err != nil {
				return errors.Wrap(err, "error deleting record")
			}
		}
		return addRecordCount(tx, -1)
	})
}

type RecordStream struct {
	iter iterator.Iterator
}

// Next returns nil when the stream is exhausted.
func (rs *RecordStream) Next() (*Record, error) {
	if !rs.iter.Next() {
		return nil, nil
	}
	rec := new(Record)
	if err := json.Unmarshal(rs.iter.Value(), rec); err != nil {
		return nil, errors.Wrap(err, "error decoding record")
	}
	return rec, nil
}

func (rs *RecordStream) Close() error {
	rs.iter.Release()
	return rs.iter.Error()
}

// StreamRecords iterates records in name order, starting after start when
// it is set.
func StreamRecords(db *leveldb.DB, start string) (*RecordStream, error) {
	if start == "" {
		return &RecordStream{
			iter: db.NewIterator(util.BytesPrefix(recordPrefix("")), nil),
		}, nil
	}

	iterRange := &util.Range{
		Start: append(recordPrefix(start), 0x00),
		Limit: recordPrefix(string([]byte{0xff})),
	}
	return &RecordStream{
		iter: db.NewIterator(iterRange, nil),
	}, nil
}

func mustEncodeInt(in int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(in))
	return buf
}

func mustDecodeInt(in []byte) int {
	if len(in) == 0 {
		return 0
	}
	out := binary.BigEndian.Uint64(in)
	if out > math.MaxInt32 {
		panic("overflow")
	}
	return int(out)
}

func mustMarshalJSON(in interface{}) []byte {
	out, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	return out
}

func mustUnmarshalJSON(data []byte, in interface{}) {
	if err := json.Unmarshal(data, in); err != nil {
		panic(err)
	}
}
