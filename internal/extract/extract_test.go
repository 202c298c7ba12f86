package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDetectKind(t *testing.T) {
	cases := []struct {
		filename string
		want     Kind
	}{
		{"paper.pdf", KindPDF},
		{"Paper.PDF", KindPDF},
		{"notes.docx", KindDOCX},
		{"scan.png", KindImage},
		{"scan.jpg", KindImage},
		{"scan.JPEG", KindImage},
	}
	for _, tc := range cases {
		got, err := DetectKind(tc.filename)
		if err != nil {
			t.Errorf("DetectKind(%q) returned error: %v", tc.filename, err)
			continue
		}
		if got != tc.want {
			t.Errorf("DetectKind(%q) = %s, want %s", tc.filename, got, tc.want)
		}
	}
}

func TestDetectKindUnsupported(t *testing.T) {
	for _, name := range []string{"notes.txt", "legacy.doc", "archive.zip", "noextension", "paper.pdf.exe"} {
		if _, err := DetectKind(name); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("DetectKind(%q) = %v, want ErrUnsupportedType", name, err)
		}
	}
}

func TestDispatcherRejectsUnknownKind(t *testing.T) {
	d := NewDispatcher(nil)
	if _, err := d.Extract(context.Background(), Kind("wav"), []byte("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestDispatcherHonorsCancellation(t *testing.T) {
	d := NewDispatcher(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Extract(ctx, KindDOCX, docxFixture(t, "Hello"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type panicStrategy struct{}

func (panicStrategy) Extract(ctx context.Context, data []byte) (string, error) {
	panic("strategy implementation fault")
}

func TestDispatcherContainsStrategyPanic(t *testing.T) {
	d := &Dispatcher{strategies: map[Kind]Strategy{KindPDF: panicStrategy{}}}

	_, err := d.Extract(context.Background(), KindPDF, []byte("x"))
	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("expected *Error from panicking strategy, got %v", err)
	}
	if !strings.Contains(ee.Error(), "strategy fault") {
		t.Fatalf("cause not preserved: %v", ee)
	}
}

func docxFixture(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var runs strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&runs, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	docXML := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + runs.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(docXML)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	d := NewDispatcher(nil)

	text, err := d.Extract(context.Background(), KindDOCX, docxFixture(t, "Hello", "World"))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if text != "Hello\nWorld" {
		t.Fatalf("expected paragraphs joined by newline, got %q", text)
	}
}

func TestExtractDOCXMultipleRunsPerParagraph(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p></w:body></w:document>`))
	w.Close()

	text, err := NewDispatcher(nil).Extract(context.Background(), KindDOCX, buf.Bytes())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if text != "Hello World" {
		t.Fatalf("expected runs concatenated within a paragraph, got %q", text)
	}
}

func TestExtractDOCXCorruptInput(t *testing.T) {
	d := NewDispatcher(nil)

	var ee *Error
	if _, err := d.Extract(context.Background(), KindDOCX, []byte("not a zip archive")); !errors.As(err, &ee) {
		t.Fatalf("expected *Error for corrupt docx, got %v", err)
	}
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("other.xml")
	fw.Write([]byte("<x/>"))
	w.Close()

	var ee *Error
	if _, err := NewDispatcher(nil).Extract(context.Background(), KindDOCX, buf.Bytes()); !errors.As(err, &ee) {
		t.Fatalf("expected *Error for archive without document.xml, got %v", err)
	}
}

// pdfFixture builds a minimal two-page PDF with correct cross-reference
// offsets computed at write time.
func pdfFixture(t *testing.T, pageTexts ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := []int{0} // object 0 is the free head

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	var kids, contents []string
	for i := range pageTexts {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
		contents = append(contents, fmt.Sprintf("%d 0 R", 3+len(pageTexts)+1+i))
	}
	fontNum := 3 + len(pageTexts)

	buf.WriteString("%PDF-1.4\n")
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), len(pageTexts)))
	for i := range pageTexts {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 %d 0 R >> >> /Contents %s >>\nendobj\n",
			3+i, fontNum, contents[i]))
	}
	writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontNum))
	for i, text := range pageTexts {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			fontNum+1+i, len(stream), stream))
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets), xrefStart)

	return buf.Bytes()
}

func TestExtractPDFMultiPageInOrder(t *testing.T) {
	d := NewDispatcher(nil)

	text, err := d.Extract(context.Background(), KindPDF, pdfFixture(t, "first page text", "second page text"))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	first := strings.Index(text, "first page text")
	second := strings.Index(text, "second page text")
	if first < 0 || second < 0 {
		t.Fatalf("page text missing from extraction: %q", text)
	}
	if first > second {
		t.Fatalf("pages out of order: %q", text)
	}
}

func TestExtractPDFBrokenPageYieldsEmptySegment(t *testing.T) {
	data := pdfFixture(t, "alpha page", "beta page", "gamma page")

	// wreck the second page's content stream object in place: with three
	// pages the content objects are 7, 8 and 9, so object 8 belongs to the
	// middle page. The cross-reference table and the other objects stay
	// intact, so the document itself still opens.
	target := []byte("8 0 obj\n<<")
	if !bytes.Contains(data, target) {
		t.Fatal("fixture layout changed, middle content object not found")
	}
	data = bytes.Replace(data, target, []byte("8 0 obj\n>>"), 1)

	text, err := NewDispatcher(nil).Extract(context.Background(), KindPDF, data)
	if err != nil {
		t.Fatalf("broken page must not fail the call, got %v", err)
	}
	if !strings.Contains(text, "alpha page") || !strings.Contains(text, "gamma page") {
		t.Fatalf("intact pages missing from extraction: %q", text)
	}
	if strings.Contains(text, "beta page") {
		t.Fatalf("broken page should contribute an empty segment, got %q", text)
	}
}

func TestExtractPDFCorruptInput(t *testing.T) {
	d := NewDispatcher(nil)

	var ee *Error
	if _, err := d.Extract(context.Background(), KindPDF, []byte("definitely not a pdf")); !errors.As(err, &ee) {
		t.Fatalf("expected *Error for corrupt pdf, got %v", err)
	}
}

type fakeEngine struct {
	text string
	err  error
}

func (f fakeEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	return f.text, f.err
}

func TestExtractImageUsesEngine(t *testing.T) {
	d := NewDispatcher(fakeEngine{text: "line one\r\nline two"})

	text, err := d.Extract(context.Background(), KindImage, []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if text != "line one\nline two" {
		t.Fatalf("expected normalized engine output, got %q", text)
	}
}

func TestExtractImageEmptyTextIsSuccess(t *testing.T) {
	d := NewDispatcher(fakeEngine{text: ""})

	text, err := d.Extract(context.Background(), KindImage, []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("empty recognition must be a success, got %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestExtractImageEngineFailure(t *testing.T) {
	d := NewDispatcher(fakeEngine{err: errors.New("unreadable raster")})

	var ee *Error
	if _, err := d.Extract(context.Background(), KindImage, []byte("junk")); !errors.As(err, &ee) {
		t.Fatalf("expected *Error from engine failure, got %v", err)
	}
	if !strings.Contains(ee.Error(), "unreadable raster") {
		t.Fatalf("cause not preserved: %v", ee)
	}
}
