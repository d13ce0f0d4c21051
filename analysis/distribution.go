package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/bikedash/dataset"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
)

const (
	// DefaultBins はヒストグラムのビン数です。
	DefaultBins = 30
	// densityPoints は密度曲線の評価点の数です。
	densityPoints = 200
	// whiskerIQR は箱ひげ図のひげの長さ（IQR の倍数）です。
	whiskerIQR = 1.5
)

// Point は2次元の点です。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bin はヒストグラムの1区間 [Low, High) です。最後のビンは High を含みます。
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Binned はヒストグラムとカーネル密度推定の結果です。
type Binned struct {
	Column    dataset.Column `json:"column"`
	N         int            `json:"n"`
	Bins      []Bin          `json:"bins"`
	Density   []Point        `json:"density"`   // 度数のスケールに合わせた密度曲線
	Bandwidth float64        `json:"bandwidth"` // ガウスカーネルの幅（Scott の規則）
}

// Histogram は列 col の値を bins 個の等幅ビンに分け、ガウスカーネル密度推定を重ねます。
// NaN は除外されます。値が1つもない場合は空の結果を返します。
//
// 密度曲線はヒストグラムと同じ縦軸で描けるように N × ビン幅 を掛けています。
// 値が2つ未満、または全て同じ値の場合は密度曲線を省略します。
func Histogram(v View, col dataset.Column, bins int) (Binned, error) {
	if bins <= 0 {
		return Binned{}, errors.NewValidationError("bins", "must be positive", bins)
	}
	values, err := finiteValues(v, col, "Histogram")
	if err != nil {
		return Binned{}, err
	}
	out := Binned{Column: col, N: len(values)}
	if len(values) == 0 {
		return out, nil
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	out.Bins = make([]Bin, bins)
	for i := 0; i < bins; i++ {
		out.Bins[i] = Bin{Low: edges[i], High: edges[i+1]}
	}
	width := (hi - lo) / float64(bins)
	for _, x := range values {
		i := int((x - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out.Bins[i].Count++
	}

	if len(values) < 2 || isConstant(values) {
		return out, nil
	}
	bw := stat.StdDev(values, nil) * math.Pow(float64(len(values)), -0.2)
	out.Bandwidth = bw

	xs := make([]float64, densityPoints)
	floats.Span(xs, floats.Min(values), floats.Max(values))
	scale := float64(len(values)) * width
	out.Density = make([]Point, densityPoints)
	for i, x := range xs {
		var sum float64
		for _, xi := range values {
			sum += distuv.Normal{Mu: xi, Sigma: bw}.Prob(x)
		}
		out.Density[i] = Point{X: x, Y: sum / float64(len(values)) * scale}
	}
	return out, nil
}

// Summary は箱ひげ図に使う五数要約と外れ値です。
type Summary struct {
	Column       dataset.Column `json:"column"`
	N            int            `json:"n"`
	Min          float64        `json:"min"`
	Q1           float64        `json:"q1"`
	Median       float64        `json:"median"`
	Q3           float64        `json:"q3"`
	Max          float64        `json:"max"`
	LowerWhisker float64        `json:"lower_whisker"`
	UpperWhisker float64        `json:"upper_whisker"`
	Outliers     []float64      `json:"outliers"`
}

// IQR は四分位範囲を返します。
func (s Summary) IQR() float64 {
	return s.Q3 - s.Q1
}

// Summarize は列 col の五数要約を計算します。四分位数は線形補間で求めます。
// ひげは Q1 - 1.5×IQR 以上の最小値から Q3 + 1.5×IQR 以下の最大値までで、
// その外側の値が外れ値です。NaN は除外されます。値がない場合は N=0 の結果を返します。
func Summarize(v View, col dataset.Column) (Summary, error) {
	values, err := finiteValues(v, col, "Summarize")
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Column: col, N: len(values)}
	if len(values) == 0 {
		return out, nil
	}
	sort.Float64s(values)

	out.Min = values[0]
	out.Max = values[len(values)-1]
	out.Q1 = quantile(values, 0.25)
	out.Median = quantile(values, 0.5)
	out.Q3 = quantile(values, 0.75)

	lowFence := out.Q1 - whiskerIQR*out.IQR()
	highFence := out.Q3 + whiskerIQR*out.IQR()
	out.LowerWhisker, out.UpperWhisker = out.Max, out.Min
	for _, x := range values {
		if x < lowFence || x > highFence {
			out.Outliers = append(out.Outliers, x)
			continue
		}
		out.LowerWhisker = math.Min(out.LowerWhisker, x)
		out.UpperWhisker = math.Max(out.UpperWhisker, x)
	}
	return out, nil
}

// quantile はソート済みの x の p 分位点を線形補間で求めます（位置 (n-1)p）。
// gonum の stat.Quantile は経験分布関数の補間で定義が異なるため自前で計算します。
func quantile(sorted []float64, p float64) float64 {
	pos := float64(len(sorted)-1) * p
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)]*(1-frac) + sorted[int(hi)]*frac
}

// Points は x 列と y 列の組を行順に返します。どちらかが NaN の行は除外されます。
func Points(v View, x, y dataset.Column) ([]Point, error) {
	if !dataset.IsNumeric(x) {
		return nil, errNotNumeric("Points", x)
	}
	if !dataset.IsNumeric(y) {
		return nil, errNotNumeric("Points", y)
	}
	out := make([]Point, 0, len(v.records))
	for _, r := range v.records {
		px, _ := r.Value(x)
		py, _ := r.Value(y)
		if math.IsNaN(px) || math.IsNaN(py) {
			continue
		}
		out = append(out, Point{X: px, Y: py})
	}
	return out, nil
}

func finiteValues(v View, col dataset.Column, op string) ([]float64, error) {
	all, err := v.Values(col)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	out := make([]float64, 0, len(all))
	for _, x := range all {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out, nil
}
