// Package analysis はフィルタ済みビューに対する集計処理を提供します。
//
// 処理の流れは Filter → 集計 の2段階です。
//
//	view := analysis.Filter(ds, analysis.Selection{
//	    Seasons:  []string{"Spring"},
//	    Weekends: []string{"0"},
//	})
//	byHour, err := analysis.GroupMean(view, analysis.KeyHour, dataset.ColumnCount)
//	corr, err := analysis.Correlate(view)
//
// どの関数も入力を変更せず、空のビューに対してはエラーではなく空の結果を返します。
// 分散が0の列を含む相関は NaN になります。
package analysis
