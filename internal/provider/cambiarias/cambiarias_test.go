package cambiarias_test

import (
    "fmt"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/stretchr/testify/require"

    "econseries/internal/httpx"
    "econseries/internal/provider/cambiarias"
    "econseries/internal/series"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *cambiarias.Provider {
    t.Helper()
    srv := httptest.NewServer(handler)
    t.Cleanup(srv.Close)
    log := logrus.New()
    log.SetOutput(io.Discard)
    return cambiarias.New(cambiarias.Config{BaseURL: srv.URL, PageSize: 100}, httpx.New(5*time.Second), log)
}

func TestFetchRange_NestedDetalle(t *testing.T) {
    t.Parallel()

    p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/Cotizaciones/USD", r.URL.Path)
        require.Equal(t, "2024-01-01", r.URL.Query().Get("fechadesde"))
        require.Equal(t, "2024-01-31", r.URL.Query().Get("fechahasta"))
        fmt.Fprint(w, `{"results":[
            {"fecha":"2024-01-02","detalle":[{"codigoMoneda":"USD","tipoCotizacion":810.45}]},
            {"fecha":"2024-01-03","detalle":[]},
            {"fecha":"2024-01-04","detalle":[{"codigoMoneda":"USD","tipoCotizacion":812.0}]}]}`)
    })

    res, err := p.FetchRange(t.Context(), series.FetchRangeParams{
        ExternalID: "USD",
        From:       "2024-01-01",
        To:         "2024-01-31",
    })
    require.NoError(t, err)
    require.Equal(t, "BCRA_CAMBIARIAS", res.Provider)
    // the empty-detalle day has no rate and is dropped
    require.Len(t, res.Points, 2)
    require.Equal(t, 810.45, res.Points[0].Value)
    require.Equal(t, "2024-01-04", res.Points[1].Ts)
}

func TestUsdRange_FixedCurrency(t *testing.T) {
    t.Parallel()

    p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/Cotizaciones/USD", r.URL.Path)
        fmt.Fprint(w, `{"results":[{"fecha":"2024-01-02","detalle":[{"codigoMoneda":"USD","tipoCotizacion":810.45}]}]}`)
    })

    points, err := p.UsdRange(t.Context(), "2024-01-01", "2024-01-31")
    require.NoError(t, err)
    require.Len(t, points, 1)
    require.Equal(t, "USD", points[0].SeriesID)
}

func TestAvailableSeries_CurrencyCatalog(t *testing.T) {
    t.Parallel()

    p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/Maestros/Divisas", r.URL.Path)
        fmt.Fprint(w, `{"results":[
            {"codigo":"USD","denominacion":"DOLAR ESTADOUNIDENSE"},
            {"codigo":"EUR","denominacion":"EURO"}]}`)
    })

    entries, err := p.AvailableSeries(t.Context())
    require.NoError(t, err)
    require.Len(t, entries, 2)
    require.Equal(t, "USD", entries[0].ID)
    require.Equal(t, "EURO", entries[1].Title)
}

func TestFetchRange_UpstreamError(t *testing.T) {
    t.Parallel()

    p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "rate limited", http.StatusTooManyRequests)
    })

    _, err := p.FetchRange(t.Context(), series.FetchRangeParams{ExternalID: "USD", From: "2024-01-01"})
    require.Error(t, err)
    require.Contains(t, err.Error(), "429")
}
