package copybook

import (
	"errors"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineSchema = MustSchema("Line",
	String("Name", 5),
	Integer("Age", 3),
	Newline("End"),
)

func TestRecordGetSet(t *testing.T) {
	r := lineSchema.New()

	age, err := r.Get("Age")
	require.NoError(t, err)
	assert.Nil(t, age)
	assert.False(t, r.IsSet("Age"))

	end, err := r.Get("End")
	require.NoError(t, err)
	assert.Equal(t, "\n", end)

	require.NoError(t, r.Set("Age", "007"))
	age, _ = r.Get("Age")
	assert.Equal(t, int64(7), age)
	assert.True(t, r.IsSet("Age"))

	require.NoError(t, r.Set("Age", nil))
	age, _ = r.Get("Age")
	assert.Nil(t, age)

	assert.Error(t, r.Set("Age", "seven"))
	_, err = r.Get("Missing")
	assert.Error(t, err)
	assert.Error(t, r.Set("Missing", 1))
}

func TestRecordDefaultFactory(t *testing.T) {
	calls := 0
	s := MustSchema("Stamp", Integer("Seq", 4, WithDefaultFunc(func() interface{} {
		calls++
		return int64(calls)
	})))
	r := s.New()

	first, _ := r.Get("Seq")
	second, _ := r.Get("Seq")
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	out, err := r.Encode()
	require.NoError(t, err)
	assert.Equal(t, "0003", out)
}

func TestRecordEncode(t *testing.T) {
	r := lineSchema.New()
	require.NoError(t, r.Set("Name", "Bob"))
	require.NoError(t, r.Set("Age", 42))

	out, err := r.Encode()
	require.NoError(t, err, spew.Sdump(r.Map()))
	assert.Equal(t, "Bob  042\n", out)
	assert.Len(t, out, lineSchema.Width())

	back, err := lineSchema.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, r.Map(), back.Map())

	require.NoError(t, r.Set("Name", "Robert"))
	_, err = r.Encode()
	var lerr *LengthError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "Name", lerr.Field)
	assert.Contains(t, err.Error(), "encode Line")
}

func TestRecordMap(t *testing.T) {
	s := MustSchema("Contact",
		String("Name", 4),
		Fragment("Phone", phoneSchema),
		List("Items", itemSchema, 2),
	)
	r, err := s.Decode("Ada 5551234567AB")
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"Name": "Ada",
		"Phone": map[string]interface{}{
			"AreaCode":   int64(555),
			"Prefix":     int64(123),
			"LineNumber": int64(4567),
		},
		"Items": []map[string]interface{}{
			{"Code": "AB"},
			{"Code": ""},
		},
	}, r.Map())

	blank := s.New().Map()
	assert.Equal(t, map[string]interface{}{
		"AreaCode":   nil,
		"Prefix":     nil,
		"LineNumber": nil,
	}, blank["Phone"])
	assert.Equal(t, []map[string]interface{}{}, blank["Items"])
}

func TestRecordUnmarshal(t *testing.T) {
	type phone struct {
		AreaCode   int
		Prefix     int
		LineNumber int
	}
	type item struct {
		Code string
	}
	type contact struct {
		Name  string
		Since time.Time
		Phone *phone
		Items []item
		Score *float64
	}

	s := MustSchema("Contact",
		String("Name", 4),
		Date("Since", 8, WithLayout("20060102")),
		Fragment("Phone", phoneSchema),
		List("Items", itemSchema, 2),
		Decimal("Score", 5),
	)
	r, err := s.Decode("Ada 199403175551234567ABCD     ")
	require.NoError(t, err)

	var c contact
	require.NoError(t, r.Unmarshal(&c), spew.Sdump(r.Map()))
	assert.Equal(t, contact{
		Name:  "Ada",
		Since: time.Date(1994, 3, 17, 0, 0, 0, 0, time.UTC),
		Phone: &phone{555, 123, 4567},
		Items: []item{{"AB"}, {"CD"}},
	}, c)
}
