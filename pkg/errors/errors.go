// Package errors はダッシュボード全体のエラーハンドリングと警告システムを提供します。
// データ読み込みの致命的なエラーと、描画を止めない警告を区別して扱います。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("bikedash-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UndefinedCorrelationWarning は分散が0の列を含むため相関係数が定義できない場合の警告です。
// 該当するセルは NaN になり、ヒートマップ上では空白として描画されます。
type UndefinedCorrelationWarning struct {
	Columns []string
	Rows    int
}

func (w *UndefinedCorrelationWarning) Error() string {
	return fmt.Sprintf("correlation is undefined for columns %v over %d rows (zero variance); set to NaN", w.Columns, w.Rows)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedCorrelationWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Strs("columns", w.Columns).
		Int("rows", w.Rows).
		Str("type", "UndefinedCorrelationWarning")
}

// NewUndefinedCorrelationWarning は新しいUndefinedCorrelationWarningを作成します。
func NewUndefinedCorrelationWarning(columns []string, rows int) *UndefinedCorrelationWarning {
	return &UndefinedCorrelationWarning{Columns: columns, Rows: rows}
}

// MissingValueWarning は数値列に欠損値が含まれていた場合の警告です。
type MissingValueWarning struct {
	Column string
	Count  int
}

func (w *MissingValueWarning) Error() string {
	return fmt.Sprintf("column '%s' has %d missing values; they are skipped by aggregations", w.Column, w.Count)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *MissingValueWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Int("count", w.Count).
		Str("type", "MissingValueWarning")
}

// NewMissingValueWarning は新しいMissingValueWarningを作成します。
func NewMissingValueWarning(column string, count int) *MissingValueWarning {
	return &MissingValueWarning{Column: column, Count: count}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// LoadError は入力ファイルの読み込みに失敗した場合のエラーです。
// ファイルが存在しない、CSVとして解析できない、必須列がない、値が解析できない場合に発生します。
// 起動時に致命的なエラーとして扱われます。
type LoadError struct {
	Path   string
	Row    int    // 1始まりのデータ行番号（ヘッダーを除く）。0 は行に依存しないエラー
	Column string // 問題のある列名（オプション）
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("bikedash: load %s", e.Path)
	if e.Row > 0 {
		msg += fmt.Sprintf(": row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(": column '%s'", e.Column)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *LoadError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Int("row", e.Row).
		Str("column", e.Column).
		Str("reason", e.Reason).
		Str("type", "LoadError")
}

// NewLoadError は新しいLoadErrorを作成し、スタックトレースを付与します。
func NewLoadError(path, reason string, err error) error {
	return errors.WithStack(&LoadError{Path: path, Reason: reason, Err: err})
}

// NewLoadErrorAt は行と列を特定したLoadErrorを作成し、スタックトレースを付与します。
func NewLoadErrorAt(path string, row int, column, reason string, err error) error {
	return errors.WithStack(&LoadError{Path: path, Row: row, Column: column, Reason: reason, Err: err})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("bikedash: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("bikedash: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// RenderError はチャートの描画に失敗した場合のエラーです。
type RenderError struct {
	Kind   string
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bikedash: render %s chart as %s: %v", e.Kind, e.Format, e.Err)
	}
	return fmt.Sprintf("bikedash: render %s chart as %s", e.Kind, e.Format)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError は新しいRenderErrorを作成し、スタックトレースを付与します。
func NewRenderError(kind, format string, err error) error {
	return errors.WithStack(&RenderError{Kind: kind, Format: format, Err: err})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// Mark は err に reference の印を付け、Is(err, reference) が真になるようにします。
// エラーの型とメッセージは変わりません。
func Mark(err, reference error) error {
	return errors.Mark(err, reference)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrUnknownView は存在しない分析ビューが指定された場合のエラーです。
	ErrUnknownView = New("unknown view")

	// ErrUnsupportedFormat はサポートされていない出力形式が指定された場合のエラーです。
	ErrUnsupportedFormat = New("unsupported format")
)
