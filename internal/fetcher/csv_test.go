package fetcher

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func drain(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for r := range rowCh {
		rows = append(rows, r)
	}
	return rows, <-errCh
}

func TestStreamCSV_GamesExport(t *testing.T) {
	input := "id,name,platform\n" +
		"1115,Hades,PC (Microsoft Windows)\n" +
		"1115,Hades,Nintendo Switch\n"

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	rows, err := drain(t, rowCh, errCh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header := <-headerCh
	if len(header) != 3 || header[1] != "name" {
		t.Errorf("wrong header: %v", header)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "Nintendo Switch" {
		t.Errorf("wrong platform cell: %q", rows[1][2])
	}
}

func TestStreamCSV_HeaderSkippedWithoutChannel(t *testing.T) {
	input := "id,name\n1942,The Witcher 3: Wild Hunt\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{HasHeader: true})

	rows, err := drain(t, rowCh, errCh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "1942" {
		t.Errorf("header row leaked into data: %v", rows)
	}
}

func TestStreamCSV_CustomDelimiter(t *testing.T) {
	input := "1115;Hades;2020-09-17\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: ';'})

	rows, err := drain(t, rowCh, errCh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "Hades" {
		t.Errorf("wrong rows: %v", rows)
	}
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := " 1115 , Hades \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})

	rows, err := drain(t, rowCh, errCh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0][0] != "1115" || rows[0][1] != "Hades" {
		t.Errorf("fields not trimmed: %v", rows[0])
	}
}

func TestStreamCSV_VariableFieldCounts(t *testing.T) {
	// Old exports carry trailing columns newer ones dropped.
	input := "1115,Hades\n1942,The Witcher 3,extra,columns\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})

	rows, err := drain(t, rowCh, errCh)
	if err != nil {
		t.Fatalf("expected variable field counts to pass: %v", err)
	}
	if len(rows[0]) != 2 || len(rows[1]) != 4 {
		t.Errorf("wrong field counts: %d and %d", len(rows[0]), len(rows[1]))
	}
}

func TestStreamCSV_Empty(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	rows, err := drain(t, rowCh, errCh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestStreamCSV_ReadErrorSurfaces(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), failReader{}, CSVOptions{})
	_, err := drain(t, rowCh, errCh)
	if err == nil || !strings.Contains(err.Error(), "read row") {
		t.Fatalf("expected a read error, got %v", err)
	}
}

func TestStreamCSV_MalformedQuote(t *testing.T) {
	input := "1115,\"Hades\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	_, err := drain(t, rowCh, errCh)
	if err == nil {
		t.Fatal("expected a parse error for an unterminated quote")
	}
}

func TestStreamCSV_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("1115,Hades\n"), CSVOptions{})
	_, err := drain(t, rowCh, errCh)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStreamCSV_CancelMidStream(t *testing.T) {
	// More rows than the channel buffers, and no consumer: the stream
	// must unblock on cancellation instead of leaking the goroutine.
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("1115,Hades\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	rowCh, errCh := StreamCSV(ctx, strings.NewReader(sb.String()), CSVOptions{})

	<-rowCh
	cancel()
	for range rowCh {
	}
	if err := <-errCh; err == nil {
		t.Fatal("expected a cancellation error")
	}
}
