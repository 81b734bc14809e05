// Package share encodes comparison requests as compact URL query strings so
// a comparison can be reproduced from a link or a single CLI flag.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rpgo/fire-compare/internal/domain"
)

// ErrMalformedShare is returned when a share string cannot be decoded.
var ErrMalformedShare = errors.New("malformed share string")

// Top-level keys.
const (
	keyA       = "a"
	keyB       = "b"
	keyHome    = "home"
	keyCur     = "cur"
	keyLocale  = "loc"
	keySim     = "sim"
	keyTrials  = "t"
	keyHorizon = "h"
	keyVol     = "v"
	keySeed    = "seed"
	keySampler = "smp"
)

// Per-side keys, prefixed with "a." or "b.".
const (
	keyAge          = "age"
	keyNetWorth     = "nw"
	keyIncome       = "inc"
	keyContribution = "con"
	keyContribRate  = "cr"
	keyReturn       = "ret"
	keySpending     = "spend"
	keySWR          = "swr"
	keyInflation    = "inf"
	keyCurrency     = "pc"
)

// Encode renders req as a query string. Zero-valued fields are omitted and
// floats use the shortest representation that parses back to the same value.
func Encode(req domain.ComparisonRequest) string {
	v := url.Values{}
	setString(v, keyA, req.A.Jurisdiction)
	setString(v, keyB, req.B.Jurisdiction)
	setString(v, keyHome, req.HomeJurisdiction)
	setString(v, keyCur, req.BaseCurrency)
	setString(v, keyLocale, req.Locale)

	encodeProfile(v, "a.", req.A.Profile)
	encodeProfile(v, "b.", req.B.Profile)

	sim := req.Simulation
	if sim.Enabled {
		v.Set(keySim, "1")
	}
	setInt(v, keyTrials, int64(sim.Trials))
	setInt(v, keyHorizon, int64(sim.HorizonYears))
	setOptionalFloat(v, keyVol, sim.ReturnVolatility)
	setInt(v, keySeed, sim.Seed)
	setString(v, keySampler, sim.Sampler)
	return v.Encode()
}

func encodeProfile(v url.Values, prefix string, p domain.FinancialProfile) {
	setInt(v, prefix+keyAge, int64(p.Age))
	setFloat(v, prefix+keyNetWorth, p.NetWorth)
	setFloat(v, prefix+keyIncome, p.GrossIncome)
	setFloat(v, prefix+keyContribution, p.AnnualContribution)
	setFloat(v, prefix+keyContribRate, p.ContributionRate)
	setFloat(v, prefix+keyReturn, p.ExpectedReturn)
	setFloat(v, prefix+keySpending, p.AnnualSpending)
	setFloat(v, prefix+keySWR, p.SafeWithdrawalRate)
	setOptionalFloat(v, prefix+keyInflation, p.InflationRate)
	setString(v, prefix+keyCurrency, p.Currency)
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}

func setInt(v url.Values, key string, n int64) {
	if n != 0 {
		v.Set(key, strconv.FormatInt(n, 10))
	}
}

func setFloat(v url.Values, key string, f float64) {
	if f != 0 {
		v.Set(key, formatFloat(f))
	}
}

// setOptionalFloat writes a set pointer even when it holds zero so an
// explicit 0 survives the round trip.
func setOptionalFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, formatFloat(*f))
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Decode parses a share string produced by Encode. A leading "?" or a full
// URL is accepted; unknown keys are ignored.
func Decode(s string) (domain.ComparisonRequest, error) {
	var req domain.ComparisonRequest
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[i+1:]
	}
	v, err := url.ParseQuery(s)
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrMalformedShare, err)
	}

	d := decoder{values: v}
	req.A.Jurisdiction = v.Get(keyA)
	req.B.Jurisdiction = v.Get(keyB)
	req.HomeJurisdiction = v.Get(keyHome)
	req.BaseCurrency = v.Get(keyCur)
	req.Locale = v.Get(keyLocale)

	req.A.Profile = d.profile("a.")
	req.B.Profile = d.profile("b.")

	req.Simulation = domain.SimulationSettings{
		Enabled:          d.boolean(keySim),
		Trials:           int(d.integer(keyTrials)),
		HorizonYears:     int(d.integer(keyHorizon)),
		ReturnVolatility: d.optionalFloat(keyVol),
		Seed:             d.integer(keySeed),
		Sampler:          v.Get(keySampler),
	}
	if d.err != nil {
		return domain.ComparisonRequest{}, d.err
	}
	return req, nil
}

// decoder keeps the first parse error so fields can be read in sequence.
type decoder struct {
	values url.Values
	err    error
}

func (d *decoder) fail(key, raw string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s=%q: %v", ErrMalformedShare, key, raw, err)
	}
}

func (d *decoder) float(key string) float64 {
	raw := d.values.Get(key)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		d.fail(key, raw, err)
		return 0
	}
	return f
}

// optionalFloat returns nil when key is absent. A present but empty value is malformed.
func (d *decoder) optionalFloat(key string) *float64 {
	if !d.values.Has(key) {
		return nil
	}
	if d.values.Get(key) == "" {
		d.fail(key, "", errors.New("empty value"))
	}
	f := d.float(key)
	return &f
}

func (d *decoder) integer(key string) int64 {
	raw := d.values.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		d.fail(key, raw, err)
		return 0
	}
	return n
}

func (d *decoder) boolean(key string) bool {
	raw := d.values.Get(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		d.fail(key, raw, err)
		return false
	}
	return b
}

func (d *decoder) profile(prefix string) domain.FinancialProfile {
	p := domain.FinancialProfile{
		Age:                int(d.integer(prefix + keyAge)),
		NetWorth:           d.float(prefix + keyNetWorth),
		GrossIncome:        d.float(prefix + keyIncome),
		AnnualContribution: d.float(prefix + keyContribution),
		ContributionRate:   d.float(prefix + keyContribRate),
		ExpectedReturn:     d.float(prefix + keyReturn),
		AnnualSpending:     d.float(prefix + keySpending),
		SafeWithdrawalRate: d.float(prefix + keySWR),
		InflationRate:      d.optionalFloat(prefix + keyInflation),
		Currency:           d.values.Get(prefix + keyCurrency),
	}
	return p
}
