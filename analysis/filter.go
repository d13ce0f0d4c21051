package analysis

import (
	"github.com/YuminosukeSato/bikedash/dataset"
)

// Selection はユーザーが選択した season と is_weekend の値の集合です。
// 空の集合は「何も選択しない」を意味し、結果は空のビューになります。
type Selection struct {
	Seasons  []string `json:"seasons"`
	Weekends []string `json:"weekends"`
}

// AllSelected はデータセットに存在する全ての値を選択した Selection を返します。
// ダッシュボードの初期状態に使われます。
func AllSelected(ds *dataset.Dataset) Selection {
	return Selection{
		Seasons:  ds.Seasons(),
		Weekends: ds.Weekends(),
	}
}

// View はデータセットの部分集合です。行の順序は元のデータセットと同じです。
type View struct {
	records []dataset.Record
}

// All はデータセット全体のビューを返します。
func All(ds *dataset.Dataset) View {
	return View{records: ds.Records()}
}

// Filter は season が sel.Seasons に含まれ、かつ is_weekend が sel.Weekends に
// 含まれる行だけを残したビューを返します。
func Filter(ds *dataset.Dataset, sel Selection) View {
	return All(ds).Filter(sel)
}

// Filter はビューに同じ条件を適用します。同じ Selection で繰り返し適用しても結果は変わりません。
func (v View) Filter(sel Selection) View {
	seasons := toSet(sel.Seasons)
	weekends := toSet(sel.Weekends)

	out := make([]dataset.Record, 0, len(v.records))
	for _, r := range v.records {
		if _, ok := seasons[r.Season]; !ok {
			continue
		}
		if _, ok := weekends[r.IsWeekend]; !ok {
			continue
		}
		out = append(out, r)
	}
	return View{records: out}
}

// Len はビューの行数を返します。
func (v View) Len() int {
	return len(v.records)
}

// At は i 番目の行を返します。
func (v View) At(i int) dataset.Record {
	return v.records[i]
}

// Records は行のコピーを返します。
func (v View) Records() []dataset.Record {
	out := make([]dataset.Record, len(v.records))
	copy(out, v.records)
	return out
}

// Values は数値列 c の値を行順に返します。NaN も含みます。
func (v View) Values(c dataset.Column) ([]float64, error) {
	if !dataset.IsNumeric(c) {
		return nil, errNotNumeric("View.Values", c)
	}
	out := make([]float64, len(v.records))
	for i, r := range v.records {
		out[i], _ = r.Value(c)
	}
	return out, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
