package layout

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/minesweeper/internal/model"
)

func render(t *testing.T, data PageData, body string) *goquery.Document {
	t.Helper()
	var sb strings.Builder
	ctx := templ.WithChildren(context.Background(), text(body))
	require.NoError(t, Base(data).Render(ctx, &sb))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return doc
}

func TestBaseEscapesContent(t *testing.T) {
	doc := render(t, PageData{Title: "<Lobby>"}, "<script>alert(1)</script>")

	assert.Equal(t, "<Lobby> | Minesweeper", doc.Find("title").Text())
	assert.Equal(t, 0, doc.Find("main script").Length())
	assert.Contains(t, doc.Find("main").Text(), "<script>")
}

func TestBaseNavigation(t *testing.T) {
	doc := render(t, PageData{Title: "Home"}, "")
	assert.Equal(t, 1, doc.Find(`nav a[href="/login"]`).Length())

	doc = render(t, PageData{Title: "Home", Player: &model.Player{DisplayName: "Alice"}}, "")
	assert.Equal(t, "Alice", doc.Find("nav .player-name").Text())
	assert.Equal(t, 1, doc.Find(`nav form[action="/auth/logout"]`).Length())

	doc = render(t, PageData{Title: "Home", Embedded: true}, "")
	assert.Equal(t, 0, doc.Find("nav").Length())
	assert.True(t, doc.Find("body").HasClass("embedded"))
}

func TestFlash(t *testing.T) {
	doc := render(t, PageData{Flash: &FlashMessage{Type: "error", Message: "Lobby not found"}}, "")

	flash := doc.Find(".flash")
	assert.True(t, flash.HasClass("flash-error"))
	assert.Equal(t, "Lobby not found", flash.Text())
}

func TestServerError(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, ServerError(PageData{Title: "Error"}).Render(context.Background(), &sb))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	require.NoError(t, err)

	assert.Equal(t, "Internal Server Error", doc.Find("main .error-page h1").Text())
	assert.Equal(t, 1, doc.Find(`main a[href="/"]`).Length())
}

func TestBaseReturnsWriteErrors(t *testing.T) {
	err := Base(PageData{Title: "Home"}).Render(context.Background(), failingWriter{})
	assert.ErrorIs(t, err, errWrite)
}

// text is a child component holding escaped text
func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

var errWrite = errors.New("write failed")
