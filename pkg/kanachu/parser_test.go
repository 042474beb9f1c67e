package kanachu

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/busboard/pkg/ctdf"
)

const approachPage = `<html><body>
<div class="inner2 pa01">
  <div class="hgroup01"><h3 class="heading3">伊12 伊勢原駅北口行</h3></div>
  <div class="wrap">
    <div class="col01">
      <table>
        <tr><th>系統</th><td>伊12</td></tr>
        <tr><th>行先</th><td>伊勢原駅北口</td></tr>
        <tr><th>経由</th><td>  石倉 　</td></tr>
        <tr><th>車両番号</th><td>か123※</td></tr>
        <tr><th>所要時間</th><td>約10分</td></tr>
      </table>
    </div>
    <div class="col02">
      <div class="frameBox03">
        <p class="title01">16:25頃発車します</p>
        <p>（現在5分遅れ）</p>
      </div>
    </div>
  </div>

  <div class="hgroup01"><h3 class="heading3">伊10 伊勢原駅北口行</h3></div>
  <div class="wrap">
    <dl><dt>行先</dt><dd>伊勢原駅北口</dd></dl>
    <div class="col02">
      <div class="frameBox03">
        <p class="title01">まもなく発車します</p>
      </div>
    </div>
  </div>

  <h3 class="heading3">臨時便</h3>
  <div class="wrap">
    <div class="col02"><div class="frameBox03"></div></div>
  </div>
</div>
</body></html>`

func parse(t *testing.T, html string) ([]ctdf.BusStatusRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	return ParseApproachInfo(doc.Selection)
}

func TestParseApproachInfo(t *testing.T) {
	records, err := parse(t, approachPage)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, ctdf.BusStatusRecord{
		RouteLabel:    "伊12",
		Destination:   "伊勢原駅北口",
		Via:           "石倉",
		VehicleID:     "か123",
		Duration:      "約10分",
		RawStatusText: "16:25頃発車します",
		DelayHint:     "（現在5分遅れ）",
	}, records[0])

	assert.Equal(t, "伊10 伊勢原駅北口行", records[1].RouteLabel)
	assert.Equal(t, "伊勢原駅北口", records[1].Destination)
	assert.Equal(t, ctdf.UnknownField, records[1].Via)
	assert.Empty(t, records[1].VehicleID)
	assert.Equal(t, "まもなく発車します", records[1].RawStatusText)
	assert.Empty(t, records[1].DelayHint)

	assert.Equal(t, ctdf.NoInformationStatus, records[2].RawStatusText)
	assert.Equal(t, ctdf.UnknownField, records[2].Destination)
}

func TestParseApproachInfoEmptyContainer(t *testing.T) {
	records, err := parse(t, `<div class="inner2 pa01"><p>現在、接近情報はありません</p></div>`)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseApproachInfoMissingContainer(t *testing.T) {
	_, err := parse(t, `<html><body><div class="maintenance">メンテナンス中</div></body></html>`)
	assert.ErrorIs(t, err, ErrLayoutChanged)
	assert.ErrorIs(t, err, ctdf.ErrUpstreamShape)
}

func TestParseApproachInfoDelayFromStatus(t *testing.T) {
	records, err := parse(t, `<div class="inner2 pa01">
  <h3 class="heading3">伊12</h3>
  <div class="wrap"><div class="col02"><div class="frameBox03">
    <p class="title01">16:25発予定 3分遅れ</p>
  </div></div></div>
</div>`)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "3分遅れ", records[0].DelayHint)
}
