package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/bikedash/dataset"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
)

// DefaultCorrelationColumns は天候要因ビューで使う列です。
func DefaultCorrelationColumns() []dataset.Column {
	return []dataset.Column{
		dataset.ColumnCount,
		dataset.ColumnTemp,
		dataset.ColumnHumidity,
		dataset.ColumnWindspeed,
	}
}

// CorrelationMatrix はピアソン相関係数の対称行列です。
// 定義できない組み合わせは NaN です。
type CorrelationMatrix struct {
	Columns []dataset.Column
	Matrix  *mat.SymDense
	Rows    [][]int // Rows[i][j] は i 列と j 列の両方が有限値の行数
}

// At は i 列目と j 列目の相関係数を返します。
func (c CorrelationMatrix) At(i, j int) float64 {
	return c.Matrix.At(i, j)
}

// Size は列数を返します。
func (c CorrelationMatrix) Size() int {
	return len(c.Columns)
}

// Labels は列名を返します。
func (c CorrelationMatrix) Labels() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = string(col)
	}
	return out
}

// Correlate は cols の全ての組み合わせについてピアソン相関係数を計算します。
// cols が空の場合は DefaultCorrelationColumns を使います。
//
// 欠損は組み合わせごとに除外します（pairwise）。i 列と j 列の相関は両方が
// NaN でない行だけで計算するので、他の列の欠損は影響しません。
// その行数が2未満の組み合わせ、分散が0になる組み合わせは NaN になり、
// エラーにはなりません。分散が0の列がある場合は UndefinedCorrelationWarning を
// 警告として出します。
func Correlate(v View, cols ...dataset.Column) (CorrelationMatrix, error) {
	if len(cols) == 0 {
		cols = DefaultCorrelationColumns()
	}
	for _, c := range cols {
		if !dataset.IsNumeric(c) {
			return CorrelationMatrix{}, errNotNumeric("Correlate", c)
		}
	}

	k := len(cols)
	values := make([][]float64, k)
	for j, c := range cols {
		values[j] = make([]float64, len(v.records))
		for i, r := range v.records {
			values[j][i], _ = r.Value(c)
		}
	}

	m := mat.NewSymDense(k, nil)
	rows := make([][]int, k)
	for i := range rows {
		rows[i] = make([]int, k)
	}
	constant := make([]bool, k)
	warnRows := 0
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			xs, ys := complete(values[i], values[j])
			n := len(xs)
			rows[i][j], rows[j][i] = n, n
			if n < 2 {
				m.SetSym(i, j, math.NaN())
				continue
			}
			ci, cj := isConstant(xs), isConstant(ys)
			if ci || cj {
				constant[i] = constant[i] || ci
				constant[j] = constant[j] || cj
				if n > warnRows {
					warnRows = n
				}
				m.SetSym(i, j, math.NaN())
				continue
			}
			if i == j {
				m.SetSym(i, j, 1)
				continue
			}
			m.SetSym(i, j, clamp(stat.Correlation(xs, ys, nil)))
		}
	}

	var names []string
	for j, c := range cols {
		if constant[j] {
			names = append(names, string(c))
		}
	}
	if len(names) > 0 {
		errors.Warn(errors.NewUndefinedCorrelationWarning(names, warnRows))
	}

	return CorrelationMatrix{
		Columns: append([]dataset.Column(nil), cols...),
		Matrix:  m,
		Rows:    rows,
	}, nil
}

// complete は x と y の両方が NaN でない位置の値を取り出します。
func complete(x, y []float64) (xs, ys []float64) {
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

// clamp は丸め誤差で [-1, 1] をわずかに超えた値を戻します。
func clamp(r float64) float64 {
	return math.Max(-1, math.Min(1, r))
}
