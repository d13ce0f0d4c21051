package analysis

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/bikedash/dataset"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
)

// Key はグループ化に使う列です。
type Key string

const (
	// KeyHour は時間（0〜23）でグループ化します。結果は時間の昇順です。
	KeyHour Key = "hour"
	// KeyWeekday は曜日名でグループ化します。結果は月曜から日曜の順です。
	KeyWeekday Key = "weekday"
	// KeySeason は season でグループ化します。結果はキーの昇順です。
	KeySeason Key = "season"
	// KeyWeekend は is_weekend でグループ化します。結果はキーの昇順です。
	KeyWeekend Key = "is_weekend"
)

func (k Key) of(r dataset.Record) (string, bool) {
	switch k {
	case KeyHour:
		return strconv.Itoa(r.Hour), true
	case KeyWeekday:
		return r.WeekdayName, true
	case KeySeason:
		return r.Season, true
	case KeyWeekend:
		return r.IsWeekend, true
	default:
		return "", false
	}
}

// Group は1つのグループの集計結果です。
type Group struct {
	Key   string  `json:"key"`
	Mean  float64 `json:"mean"`
	Rows  int     `json:"rows"`  // グループに属する行数
	Valid int     `json:"valid"` // 平均の計算に使った（NaN でない）値の数
}

// GroupedMean はグループごとの平均値です。
type GroupedMean struct {
	By     Key            `json:"by"`
	Target dataset.Column `json:"target"`
	Groups []Group        `json:"groups"`
}

// Len はグループ数を返します。
func (g GroupedMean) Len() int {
	return len(g.Groups)
}

// Get はキー key の平均値を返します。キーが存在しない場合は false を返します。
func (g GroupedMean) Get(key string) (float64, bool) {
	for _, grp := range g.Groups {
		if grp.Key == key {
			return grp.Mean, true
		}
	}
	return 0, false
}

// Keys はグループキーを結果の順序で返します。
func (g GroupedMean) Keys() []string {
	out := make([]string, len(g.Groups))
	for i, grp := range g.Groups {
		out[i] = grp.Key
	}
	return out
}

// Means は平均値を結果の順序で返します。
func (g GroupedMean) Means() []float64 {
	out := make([]float64, len(g.Groups))
	for i, grp := range g.Groups {
		out[i] = grp.Mean
	}
	return out
}

// Counts は各グループの行数を結果の順序で返します。
func (g GroupedMean) Counts() []int {
	out := make([]int, len(g.Groups))
	for i, grp := range g.Groups {
		out[i] = grp.Rows
	}
	return out
}

// GroupMean は by でグループ化し、target 列の算術平均を計算します。
//
// パラメータ:
//   - v: 集計対象のビュー
//   - by: グループ化キー
//   - target: 平均を取る数値列
//
// 戻り値:
//   - GroupedMean: ビューに存在するキーだけを含む結果（空のビューなら空）
//   - error: by または target が不正な場合
//
// 欠損値（NaN）は平均の計算から除外されます。全ての値が欠損しているグループも
// キーは残り、平均は NaN になります。
func GroupMean(v View, by Key, target dataset.Column) (GroupedMean, error) {
	if _, ok := by.of(dataset.Record{}); !ok {
		return GroupedMean{}, errors.NewValidationError("by", "unknown group key", string(by))
	}
	if !dataset.IsNumeric(target) {
		return GroupedMean{}, errNotNumeric("GroupMean", target)
	}

	index := make(map[string]int)
	var keys []string
	var values [][]float64
	var rows []int

	for _, r := range v.records {
		k, _ := by.of(r)
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			values = append(values, nil)
			rows = append(rows, 0)
		}
		rows[i]++
		if x, _ := r.Value(target); !math.IsNaN(x) {
			values[i] = append(values[i], x)
		}
	}

	groups := make([]Group, len(keys))
	for i, k := range keys {
		mean := math.NaN()
		if len(values[i]) > 0 {
			mean = stat.Mean(values[i], nil)
		}
		groups[i] = Group{Key: k, Mean: mean, Rows: rows[i], Valid: len(values[i])}
	}
	orderGroups(by, groups)

	return GroupedMean{By: by, Target: target, Groups: groups}, nil
}

func orderGroups(by Key, groups []Group) {
	switch by {
	case KeyHour:
		sort.SliceStable(groups, func(i, j int) bool {
			a, _ := strconv.Atoi(groups[i].Key)
			b, _ := strconv.Atoi(groups[j].Key)
			return a < b
		})
	case KeyWeekday:
		rank := make(map[string]int, len(dataset.Weekdays))
		for i, d := range dataset.Weekdays {
			rank[d] = i
		}
		sort.SliceStable(groups, func(i, j int) bool {
			return rank[groups[i].Key] < rank[groups[j].Key]
		})
	default:
		sortByKey(groups)
	}
}

// sortByKey は全てのキーが数値なら数値として、そうでなければ文字列として
// 昇順に並べます。"10" が "9" より前に来ないようにするためです。
func sortByKey(groups []Group) {
	nums := make(map[string]float64, len(groups))
	for _, g := range groups {
		x, err := strconv.ParseFloat(g.Key, 64)
		if err != nil {
			sort.SliceStable(groups, func(i, j int) bool {
				return groups[i].Key < groups[j].Key
			})
			return
		}
		nums[g.Key] = x
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return nums[groups[i].Key] < nums[groups[j].Key]
	})
}

func errNotNumeric(op string, c dataset.Column) error {
	return errors.NewValueError(op, "column '"+string(c)+"' is not numeric")
}
