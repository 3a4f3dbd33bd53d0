package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/codeGROOVE-dev/tzapi/pkg/constants"
	"github.com/codeGROOVE-dev/tzapi/pkg/tzconvert"
)

var (
	errNotObject    = errors.New("body is not a JSON object")
	errTrailingData = errors.New("unexpected data after JSON object")
)

// object holds the members of a JSON object under their exact keys.
// Struct decoding would also accept "TARGET_TZ" for target_tz.
type object map[string]json.RawMessage

// member returns the raw value at key. A null value counts as absent.
func (o object) member(key, field string) (json.RawMessage, error) {
	raw, ok := o[key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return nil, tzconvert.MissingField(field)
	}
	return raw, nil
}

func (o object) nested(key, field string) (object, error) {
	raw, err := o.member(key, field)
	if err != nil {
		return nil, err
	}
	var n object
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, tzconvert.InvalidBody(fmt.Errorf("%s: %w", field, err))
	}
	return n, nil
}

// stringField names one required string member and where to store it.
type stringField struct {
	obj  object
	dst  *string
	key  string
	name string
}

// readStrings checks that every field is present, in order, before
// checking any of their types.
func readStrings(fields ...stringField) error {
	raws := make([]json.RawMessage, len(fields))
	for i, f := range fields {
		raw, err := f.obj.member(f.key, f.name)
		if err != nil {
			return err
		}
		raws[i] = raw
	}
	for i, f := range fields {
		if err := json.Unmarshal(raws[i], f.dst); err != nil {
			return tzconvert.InvalidBody(fmt.Errorf("%s: %w", f.name, err))
		}
	}
	return nil
}

// decode reads exactly one JSON object from the body.
func decode(w http.ResponseWriter, r *http.Request) (object, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, constants.MaxBodyBytes))
	var obj object
	if err := dec.Decode(&obj); err != nil {
		return nil, tzconvert.InvalidBody(err)
	}
	if obj == nil {
		return nil, tzconvert.InvalidBody(errNotObject)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, tzconvert.InvalidBody(errTrailingData)
	}
	return obj, nil
}

func decodeConvert(w http.ResponseWriter, r *http.Request) (tzconvert.ConvertRequest, error) {
	obj, err := decode(w, r)
	if err != nil {
		return tzconvert.ConvertRequest{}, err
	}
	date, err := obj.nested("date", "date")
	if err != nil {
		return tzconvert.ConvertRequest{}, err
	}

	var req tzconvert.ConvertRequest
	err = readStrings(
		stringField{obj: date, key: "date", name: "date.date", dst: &req.Date},
		stringField{obj: date, key: "tz", name: "date.tz", dst: &req.TZ},
		stringField{obj: obj, key: "target_tz", name: "target_tz", dst: &req.TargetTZ},
	)
	if err != nil {
		return tzconvert.ConvertRequest{}, err
	}
	return req, nil
}

func decodeDateDiff(w http.ResponseWriter, r *http.Request) (tzconvert.DiffRequest, error) {
	obj, err := decode(w, r)
	if err != nil {
		return tzconvert.DiffRequest{}, err
	}

	var req tzconvert.DiffRequest
	err = readStrings(
		stringField{obj: obj, key: "first_date", name: "first_date", dst: &req.FirstDate},
		stringField{obj: obj, key: "first_tz", name: "first_tz", dst: &req.FirstTZ},
		stringField{obj: obj, key: "second_date", name: "second_date", dst: &req.SecondDate},
		stringField{obj: obj, key: "second_tz", name: "second_tz", dst: &req.SecondTZ},
	)
	if err != nil {
		return tzconvert.DiffRequest{}, err
	}
	return req, nil
}
