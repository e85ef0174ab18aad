// Package selftest checks the Hartley transformer against gonum's FFT.
package selftest

import (
	"io"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/fhtscope/fhtscope/fht"
	"github.com/fhtscope/fhtscope/util"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// MinExp is the smallest size exponent checked.
const MinExp = 3

// DefaultMaxExp keeps a default run under a second.
const DefaultMaxExp = 16

// Tolerance is the largest error relative to the reference peak a check
// accepts.
const Tolerance = 1e-9

// ErrMismatch is returned by Report.Check when a size is out of tolerance.
var ErrMismatch = errors.New("transform does not match reference")

// Result holds the errors measured for one transform size. Errors are the
// max absolute difference divided by the reference peak.
type Result struct {
	Exp  int
	Size int

	Forward   float64 // Transform against Re X - Im X
	Power     float64 // Power against |X|^2
	RoundTrip float64 // Transform twice, scaled by 1/N, against the input

	Elapsed time.Duration // one Transform call
}

func (r Result) worst() float64 {
	return math.Max(r.Forward, math.Max(r.Power, r.RoundTrip))
}

// Report is the outcome of Run.
type Report struct {
	Results []Result

	// Unrolled is the error of Transform8 for N = 8.
	Unrolled float64
}

// Run checks every exponent in [MinExp, maxExp] with random input from seed.
func Run(maxExp int, seed int64) (Report, error) {
	if maxExp < MinExp || maxExp > fht.MaxSizeExp {
		return Report{}, errors.Errorf("max exponent %d outside [%d, %d]", maxExp, MinExp, fht.MaxSizeExp)
	}

	rng := rand.New(rand.NewSource(seed))
	report := Report{}

	for exp := MinExp; exp <= maxExp; exp++ {
		res, err := check(exp, rng)
		if err != nil {
			return Report{}, err
		}

		report.Results = append(report.Results, res)
	}

	unrolled, err := checkUnrolled(rng)
	if err != nil {
		return Report{}, err
	}

	report.Unrolled = unrolled

	return report, nil
}

func check(exp int, rng *rand.Rand) (Result, error) {
	tr, err := fht.New(exp)
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to create transformer 2^%d", exp)
	}

	n := tr.Size()
	x := randomSignal(rng, n)
	coeffs := fourier.NewFFT(n).Coefficients(nil, x)

	want := hartley(coeffs, n)
	got := tr.Copy(make([]float64, n), x)

	start := time.Now()
	tr.Transform(got)
	elapsed := time.Since(start)

	res := Result{
		Exp:     exp,
		Size:    n,
		Forward: relErr(got, want),
		Elapsed: elapsed,
	}

	half := n/2 + 1
	power := tr.Copy(make([]float64, n), got)
	tr.Power(power)
	res.Power = relErr(power[:half], magnitudes(coeffs))

	tr.Transform(got)
	tr.Scale(got, 1/float64(n))
	res.RoundTrip = relErr(got, x)

	return res, nil
}

func checkUnrolled(rng *rand.Rand) (float64, error) {
	tr, err := fht.New(3)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create transformer 2^3")
	}

	x := randomSignal(rng, 8)
	want := hartley(fourier.NewFFT(8).Coefficients(nil, x), 8)

	tr.Transform8(x)

	return relErr(x, want), nil
}

// hartley derives the Hartley transform from the half spectrum of a real FFT.
func hartley(coeffs []complex128, n int) []float64 {
	out := make([]float64, n)
	for k := range out {
		if k <= n/2 {
			out[k] = real(coeffs[k]) - imag(coeffs[k])
		} else {
			c := coeffs[n-k]
			out[k] = real(c) + imag(c)
		}
	}
	return out
}

func magnitudes(coeffs []complex128) []float64 {
	out := make([]float64, len(coeffs))
	for k, c := range coeffs {
		out[k] = real(c)*real(c) + imag(c)*imag(c)
	}
	return out
}

func relErr(got, want []float64) float64 {
	peak := math.Max(floats.Norm(want, math.Inf(1)), 1)
	return floats.Distance(got, want, math.Inf(1)) / peak
}

func randomSignal(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

// Check returns an error wrapping ErrMismatch for the first size whose error
// is above tol.
func (r Report) Check(tol float64) error {
	if r.Unrolled > tol {
		return errors.Wrapf(ErrMismatch, "unrolled N=8 error %.3g", r.Unrolled)
	}

	for _, res := range r.Results {
		if e := res.worst(); e > tol {
			return errors.Wrapf(ErrMismatch, "N=%d error %.3g", res.Size, e)
		}
	}

	return nil
}

// Print writes one aligned row per size, then the unrolled N=8 row.
func (r Report) Print(w io.Writer) error {
	t := util.NewTable(w)
	t.Row("exp", "size", "forward", "power", "roundtrip", "time")

	for _, res := range r.Results {
		t.Row(res.Exp, res.Size, sci(res.Forward), sci(res.Power), sci(res.RoundTrip), res.Elapsed)
	}

	t.Row("unrolled", 8, sci(r.Unrolled))

	return t.Flush()
}

func sci(v float64) string {
	return strconv.FormatFloat(v, 'g', 3, 64)
}
