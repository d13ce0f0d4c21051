package dashboard

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the label languages, the default first.
var Supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(Supported)

// MatchLanguage picks the supported language that best fits the given
// preferences. Each preference may be a tag ("id") or a full
// Accept-Language value ("id-ID,id;q=0.9,en;q=0.8"). Unparseable values are
// ignored; no usable preference yields English.
func MatchLanguage(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	_, i, _ := matcher.Match(tags...)
	return Supported[i]
}

func matchTag(tag language.Tag) language.Tag {
	_, i, _ := matcher.Match(tag)
	return Supported[i]
}

// Message keys are the English texts.
const (
	msgTimeView         = "Bicycle Usage Patterns over Time"
	msgDayTypeView      = "Weekday versus Weekend, and Seasons"
	msgFactorsView      = "Factors Affecting Bicycle Usage"
	msgDistributionView = "Distribution and Outliers"

	msgHourlyHeading  = "Bicycle Usage per Hour"
	msgHourlyTitle    = "Average Bicycle Usage per Hour"
	msgDailyHeading   = "Bicycle Usage per Day"
	msgDailyTitle     = "Average Bicycle Usage per Day"
	msgWeekendHeading = "Bicycle Usage Difference: Weekday vs Weekend"
	msgWeekendTitle   = "Bicycle Usage: Weekday vs Weekend"
	msgSeasonHeading  = "Bicycle Usage Difference by Season"
	msgSeasonTitle    = "Bicycle Usage by Season"
	msgCorrHeading    = "Correlation between Weather Factors and Bicycle Usage"
	msgCorrTitle      = "Correlation of Weather Factors with Bicycle Usage"
	msgTempHeading    = "Effect of Temperature on Bicycle Usage"
	msgTempTitle      = "Bicycle Usage vs Temperature"
	msgHistHeading    = "Distribution of Bicycle Usage"
	msgHistTitle      = "Distribution of Bicycle Usage Count"
	msgBoxHeading     = "Outlier Analysis of Bicycle Usage"
	msgBoxTitle       = "Outliers in Bicycle Usage"

	msgHour        = "Hour"
	msgDay         = "Day"
	msgDayType     = "Day Type"
	msgSeason      = "Season"
	msgTemperature = "Temperature"
	msgUsage       = "Usage Count"
	msgFrequency   = "Frequency"

	msgSettings       = "Dashboard Settings"
	msgChooseAnalysis = "Choose Analysis"
	msgChooseSeason   = "Choose Season:"
	msgChooseDayType  = "Choose Day Type (Weekday/Weekend):"
	msgApply          = "Apply"
	msgNoData         = "No data for the current selection"
	msgRows           = "%d rows selected"
)

var indonesian = map[string]string{
	msgTimeView:         "Pola Penggunaan Sepeda Berdasarkan Waktu",
	msgDayTypeView:      "Perbedaan Hari Kerja dan Akhir Pekan, atau Musim",
	msgFactorsView:      "Faktor yang Mempengaruhi Jumlah Penggunaan Sepeda",
	msgDistributionView: "Distribusi dan Outlier",

	msgHourlyHeading:  "Penggunaan Sepeda per Jam",
	msgHourlyTitle:    "Rata-rata Penggunaan Sepeda per Jam",
	msgDailyHeading:   "Penggunaan Sepeda per Hari",
	msgDailyTitle:     "Rata-rata Penggunaan Sepeda per Hari",
	msgWeekendHeading: "Perbedaan Penggunaan Sepeda: Hari Kerja vs Akhir Pekan",
	msgWeekendTitle:   "Penggunaan Sepeda: Hari Kerja vs Akhir Pekan",
	msgSeasonHeading:  "Perbedaan Penggunaan Sepeda Berdasarkan Musim",
	msgSeasonTitle:    "Penggunaan Sepeda Berdasarkan Musim",
	msgCorrHeading:    "Korelasi antara Faktor Cuaca dan Penggunaan Sepeda",
	msgCorrTitle:      "Korelasi Faktor Cuaca dengan Penggunaan Sepeda",
	msgTempHeading:    "Pengaruh Suhu terhadap Penggunaan Sepeda",
	msgTempTitle:      "Penggunaan Sepeda vs Suhu",
	msgHistHeading:    "Distribusi Jumlah Penggunaan Sepeda",
	msgHistTitle:      "Distribusi Jumlah Penggunaan Sepeda",
	msgBoxHeading:     "Analisis Outlier pada Jumlah Penggunaan Sepeda",
	msgBoxTitle:       "Outlier pada Jumlah Penggunaan Sepeda",

	msgHour:        "Jam",
	msgDay:         "Hari",
	msgDayType:     "Tipe Hari",
	msgSeason:      "Musim",
	msgTemperature: "Suhu",
	msgUsage:       "Jumlah Penggunaan",
	msgFrequency:   "Frekuensi",

	msgSettings:       "Pengaturan Dashboard",
	msgChooseAnalysis: "Pilih Analisis",
	msgChooseSeason:   "Pilih Musim:",
	msgChooseDayType:  "Pilih Tipe Hari (Kerja/Akhir Pekan):",
	msgApply:          "Terapkan",
	msgNoData:         "Tidak ada data untuk pilihan ini",
	msgRows:           "%d baris dipilih",
}

var labelCatalog = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, id := range indonesian {
		// neither call can fail for plain strings
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Indonesian, key, id)
	}
	return b
}

func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(labelCatalog))
}

// Text holds the localized strings of the page chrome.
type Text struct {
	Settings       string `json:"settings"`
	ChooseAnalysis string `json:"choose_analysis"`
	ChooseSeason   string `json:"choose_season"`
	ChooseDayType  string `json:"choose_day_type"`
	Apply          string `json:"apply"`
	Rows           string `json:"rows"`
}

func pageText(p *message.Printer, rows int) Text {
	return Text{
		Settings:       p.Sprintf(msgSettings),
		ChooseAnalysis: p.Sprintf(msgChooseAnalysis),
		ChooseSeason:   p.Sprintf(msgChooseSeason),
		ChooseDayType:  p.Sprintf(msgChooseDayType),
		Apply:          p.Sprintf(msgApply),
		Rows:           p.Sprintf(msgRows, rows),
	}
}
