package export

import (
	"bytes"
	"strings"
	"testing"

	"ai-supply-planner/internal/inventory"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePlan = []inventory.PlanItem{
	{Category: "Sredstva za čišćenje kupaonice", MonthlyNeed: "5L", AnnualTotal: "60L", RecommendedStock: "12L"},
	{Category: "Kava", MonthlyNeed: "2kg", AnnualTotal: "24kg", RecommendedStock: "4.8kg"},
}

var sampleShopping = []inventory.ShoppingItem{
	{
		Item: "Toaletni papir", Quantity: "1440 rola", SelectedOfferIndex: 1,
		Offers: []inventory.ShopOffer{
			{Shop: "Konzum", Price: "0,35 €", TotalCost: "504,00 €", EstimatedSavings: "10%"},
			{Shop: "dm", Price: "0,39 €", TotalCost: "561,60 €"},
		},
	},
	{
		Item: "Kava", Quantity: "24kg",
		Offers: []inventory.ShopOffer{{Shop: "Lidl", Price: "9,99 €", TotalCost: "239,76 €", EstimatedSavings: "5%"}},
	},
}

func TestPlanTSV(t *testing.T) {
	got := PlanTSV(samplePlan)
	want := "Kategorija\tMjesečna Potreba\tGodišnji Total\tPreporučena Zaliha (20%)\n" +
		"Sredstva za čišćenje kupaonice\t5L\t60L\t12L\n" +
		"Kava\t2kg\t24kg\t4.8kg"
	assert.Equal(t, want, got)

	t.Run("Separators inside values", func(t *testing.T) {
		got := PlanTSV([]inventory.PlanItem{{Category: "a\tb", MonthlyNeed: "1\n2"}})
		lines := strings.Split(got, "\n")
		require.Len(t, lines, 2)
		assert.Len(t, strings.Split(lines[1], "\t"), 4)
	})

	t.Run("Empty plan is just the header", func(t *testing.T) {
		assert.Equal(t, planTSVHeader, PlanTSV(nil))
	})
}

func TestRenderPlanFragment(t *testing.T) {
	frag, err := RenderPlanFragment(append(samplePlan, inventory.PlanItem{Category: "<script>alert(1)</script>"}))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(frag)))
	require.NoError(t, err)

	out := doc.Find("#plan-output")
	require.Equal(t, 1, out.Length())
	assert.Equal(t, 4, out.Find("thead th").Length())

	rows := out.Find("tbody tr")
	require.Equal(t, 3, rows.Length())
	assert.Equal(t, "cleaning", rows.Eq(0).AttrOr("data-icon", ""))
	assert.Equal(t, "kitchen", rows.Eq(1).AttrOr("data-icon", ""))
	assert.Contains(t, rows.Eq(1).Find("td").Eq(0).Text(), "Kava")
	assert.Equal(t, "24kg", rows.Eq(1).Find("td").Eq(2).Text())
	assert.Equal(t, 0, doc.Find("script").Length())
}

func TestPrintableHTML(t *testing.T) {
	frag, err := RenderPlanFragment(samplePlan)
	require.NoError(t, err)
	page := "<html><body><nav>menu</nav>" + string(frag) + "<footer>x</footer></body></html>"

	printable, err := PrintableHTML(page)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(printable))
	require.NoError(t, err)
	assert.Equal(t, "Ispis Plana", doc.Find("title").Text())
	assert.Equal(t, "Godišnji Plan Nabave", doc.Find("h1").Text())
	assert.Equal(t, 2, doc.Find("tbody tr").Length())
	assert.Equal(t, 0, doc.Find("nav").Length())
	assert.Equal(t, 0, doc.Find("footer").Length())

	_, err = PrintableHTML("<html><body><p>nothing</p></body></html>")
	assert.ErrorIs(t, err, ErrNoPlanOutput)
}

func TestPlanPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlanPDF(&buf, samplePlan, PDFOptions{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	t.Run("Many rows span pages", func(t *testing.T) {
		var long []inventory.PlanItem
		for i := 0; i < 120; i++ {
			long = append(long, inventory.PlanItem{
				Category:         strings.Repeat("Vrlo dugačak naziv kategorije ", 3),
				MonthlyNeed:      "1",
				AnnualTotal:      "12",
				RecommendedStock: "2.4",
			})
		}
		var buf bytes.Buffer
		require.NoError(t, PlanPDF(&buf, long, PDFOptions{}))
		pages := bytes.Count(buf.Bytes(), []byte("/Type /Page")) - bytes.Count(buf.Bytes(), []byte("/Type /Pages"))
		assert.Greater(t, pages, 1)
	})

	t.Run("Missing font file", func(t *testing.T) {
		var buf bytes.Buffer
		err := PlanPDF(&buf, samplePlan, PDFOptions{FontPath: "/nonexistent/font.ttf"})
		assert.Error(t, err)
	})
}

func TestShoppingPlanPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ShoppingPlanPDF(&buf, sampleShopping, PDFOptions{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	var empty bytes.Buffer
	require.NoError(t, ShoppingPlanPDF(&empty, []inventory.ShoppingItem{{Item: "Čaj", Quantity: "1kg"}}, PDFOptions{}))
	assert.True(t, bytes.HasPrefix(empty.Bytes(), []byte("%PDF-")))
}

func TestLineCount(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)

	assert.Equal(t, 1, lineCount(pdf, "", 50))
	assert.Equal(t, 1, lineCount(pdf, "Kava", 50))

	word := pdf.GetStringWidth("abcdefghij")
	assert.Equal(t, 3, lineCount(pdf, "abcdefghij abcdefghij abcdefghij", word+1))
	assert.Equal(t, 2, lineCount(pdf, strings.Repeat("x", 20), pdf.GetStringWidth(strings.Repeat("x", 12))))
}
