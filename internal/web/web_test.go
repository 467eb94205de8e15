package web

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/katalog/internal/assets"
	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/csrf"
	"github.com/erazemk/katalog/internal/db"
	"github.com/erazemk/katalog/internal/metrics"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

const (
	testPassword  = "drumroll"
	testMaxUpload = 64 << 10
)

var tokenPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

type harness struct {
	t         *testing.T
	db        *sql.DB
	handler   http.Handler
	uploadDir string
	metrics   *metrics.Metrics
	cookie    *http.Cookie
	token     string
}

func newHarness(t *testing.T, production bool) *harness {
	t.Helper()
	database := db.NewTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	gate, err := catalog.NewPasswordGate(string(hash))
	require.NoError(t, err)

	dir := t.TempDir()
	disk, err := assets.NewDisk(dir, "/uploads")
	require.NoError(t, err)

	m := metrics.New()
	manager := assets.NewManager(disk, assets.WithFailureCounter(m.RemovalFailures))
	cat := catalog.New(database, gate, manager, catalog.WithOutcomes(m.Mutations))

	handler, err := NewRouter(Options{
		DB:             database,
		Catalog:        cat,
		FormKey:        "test-form-key",
		Production:     production,
		MaxUploadBytes: testMaxUpload,
		Uploads:        disk.Handler(),
		Metrics:        m,
	})
	require.NoError(t, err)

	h := &harness{t: t, db: database, handler: handler, uploadDir: dir, metrics: m}

	// A form page hands out the nonce cookie and a matching token.
	rec := h.get("/inventory/brand/create")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrf.CookieName {
			h.cookie = c
		}
	}
	require.NotNil(t, h.cookie)
	match := tokenPattern.FindStringSubmatch(rec.Body.String())
	require.Len(t, match, 2)
	h.token = match[1]

	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (h *harness) post(target string, form url.Values) *httptest.ResponseRecorder {
	form.Set(csrf.FormField, h.token)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) postMultipart(target string, form url.Values, photo []byte) *httptest.ResponseRecorder {
	form.Set(csrf.FormField, h.token)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(h.t, mw.WriteField(k, v))
		}
	}
	if photo != nil {
		fw, err := mw.CreateFormFile(photoField, "photo.png")
		require.NoError(h.t, err)
		_, err = fw.Write(photo)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req)
}

func (h *harness) seedRefs() (*model.Brand, *model.Category) {
	ctx := context.Background()
	brand, err := store.CreateBrand(ctx, h.db, "Vater")
	require.NoError(h.t, err)
	category, err := store.CreateCategory(ctx, h.db, "Sticks", "Drum sticks of all sizes.")
	require.NoError(h.t, err)
	return brand, category
}

func itemValues(brand *model.Brand, category *model.Category, password string) url.Values {
	return url.Values{
		"name":        {"5A Hickory drum sticks"},
		"brand":       {brand.ID.String()},
		"category":    {category.ID.String()},
		"description": {"Classic 5A hickory sticks with wood tips."},
		"price":       {"$12.99"},
		"numInStock":  {"40"},
		"password":    {password},
	}
}

func itemID(t *testing.T, rec *httptest.ResponseRecorder) uuid.UUID {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	id, err := uuid.Parse(strings.TrimPrefix(rec.Header().Get("Location"), "/inventory/item/"))
	require.NoError(t, err)
	return id
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// hugeCanvasPNG is a small upload whose header declares 20000x20000 pixels.
func hugeCanvasPNG() []byte {
	ihdr := make([]byte, 17)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], 20000)
	binary.BigEndian.PutUint32(ihdr[8:], 20000)
	ihdr[12] = 8

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

func countItems(t *testing.T, database *sql.DB) int {
	t.Helper()
	n, err := store.CountItems(context.Background(), database)
	require.NoError(t, err)
	return n
}

func TestRootRedirectsToInventory(t *testing.T) {
	h := newHarness(t, false)
	rec := h.get("/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/inventory", rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	h := newHarness(t, false)
	rec := h.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, false)
	_, err := store.Seed(context.Background(), h.db)
	require.NoError(t, err)

	rec := h.get("/inventory")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, ShopName)
	assert.Contains(t, body, "<strong>Items:</strong> 4")
	assert.Contains(t, body, "<strong>Brands:</strong> 4")
	assert.Contains(t, body, "<strong>Categories:</strong> 4")
	assert.Contains(t, body, `id="stock-value"`)
}

func TestListsAreSortedByName(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	for _, name := range []string{"Zildjian", "evans", "Pearl"} {
		_, err := store.CreateBrand(ctx, h.db, name)
		require.NoError(t, err)
	}

	body := h.get("/inventory/brands").Body.String()
	e, p, z := strings.Index(body, ">evans<"), strings.Index(body, ">Pearl<"), strings.Index(body, ">Zildjian<")
	require.True(t, e > 0 && p > 0 && z > 0, body)
	assert.True(t, e < p && p < z, "brands out of order")
}

func TestBrandShortNameIsRejected(t *testing.T) {
	h := newHarness(t, false)

	rec := h.post("/inventory/brand/create", url.Values{"name": {" P "}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Brand name must be at least 2 characters.")
	// The sanitized value is echoed back.
	assert.Contains(t, rec.Body.String(), `value="P"`)

	n, err := store.CountBrands(context.Background(), h.db)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBrandDuplicateRedirectsToExisting(t *testing.T) {
	h := newHarness(t, false)

	first := h.post("/inventory/brand/create", url.Values{"name": {"Pearl"}})
	require.Equal(t, http.StatusSeeOther, first.Code)
	location := first.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/inventory/brand/"), location)

	second := h.post("/inventory/brand/create", url.Values{"name": {"pearl"}})
	assert.Equal(t, http.StatusSeeOther, second.Code)
	assert.Equal(t, location, second.Header().Get("Location"))

	n, err := store.CountBrands(context.Background(), h.db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBrandRenameConflictIsReported(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	pearl, err := store.CreateBrand(ctx, h.db, "Pearl")
	require.NoError(t, err)
	evans, err := store.CreateBrand(ctx, h.db, "Evans")
	require.NoError(t, err)

	rec := h.post(evans.URL()+"/update", url.Values{"name": {"PEARL"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Another brand already uses this name.")
	assert.Contains(t, rec.Body.String(), pearl.URL())

	got, err := store.GetBrand(ctx, h.db, evans.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evans", got.Name)
}

func TestBrandUpdate(t *testing.T) {
	h := newHarness(t, false)
	brand, err := store.CreateBrand(context.Background(), h.db, "Tama")
	require.NoError(t, err)

	form := h.get(brand.URL() + "/update")
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `value="Tama"`)

	rec := h.post(brand.URL()+"/update", url.Values{"name": {"Tama Drums"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, brand.URL(), rec.Header().Get("Location"))

	got, err := store.GetBrand(context.Background(), h.db, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tama Drums", got.Name)
}

func TestBrandDeleteBlockedByItems(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()
	itemID(t, h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), nil))

	rec := h.post(brand.URL()+"/delete", url.Values{"brandid": {brand.ID.String()}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "5A Hickory drum sticks")

	got, err := store.GetBrand(context.Background(), h.db, brand.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestBrandDelete(t *testing.T) {
	h := newHarness(t, false)
	brand, err := store.CreateBrand(context.Background(), h.db, "Ludwig")
	require.NoError(t, err)

	confirm := h.get(brand.URL() + "/delete")
	require.Equal(t, http.StatusOK, confirm.Code)
	assert.Contains(t, confirm.Body.String(), `name="brandid"`)

	rec := h.post(brand.URL()+"/delete", url.Values{"brandid": {brand.ID.String()}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/inventory/brands", rec.Header().Get("Location"))

	got, err := store.GetBrand(context.Background(), h.db, brand.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteOfMissingRecordRedirectsToList(t *testing.T) {
	h := newHarness(t, false)
	missing := uuid.NewString()

	tests := []struct {
		target, list string
	}{
		{"/inventory/brand/" + missing + "/delete", "/inventory/brands"},
		{"/inventory/category/" + missing + "/delete", "/inventory/categories"},
		{"/inventory/item/" + missing + "/delete", "/inventory/items"},
		{"/inventory/brand/not-an-id/delete", "/inventory/brands"},
	}
	for _, tt := range tests {
		rec := h.get(tt.target)
		assert.Equal(t, http.StatusSeeOther, rec.Code, tt.target)
		assert.Equal(t, tt.list, rec.Header().Get("Location"), tt.target)
	}

	rec := h.post("/inventory/item/"+missing+"/delete", url.Values{"itemid": {missing}, "password": {testPassword}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/inventory/items", rec.Header().Get("Location"))
}

func TestCategoryLifecycle(t *testing.T) {
	h := newHarness(t, false)

	rec := h.post("/inventory/category/create", url.Values{"name": {"Cymbals"}, "description": {""}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Description must not be empty.")

	rec = h.post("/inventory/category/create", url.Values{"name": {"Cymbals"}, "description": {"Crash, ride and hi-hat."}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")

	detail := h.get(location)
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), "Crash, ride and hi-hat.")

	rec = h.post(location+"/update", url.Values{"name": {"Cymbals"}, "description": {"Bronze."}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = h.post(location+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusNotFound, h.get(location).Code)
}

func TestItemWithoutPhotoUsesPlaceholder(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()

	id := itemID(t, h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), nil))

	item, err := store.GetItem(context.Background(), h.db, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, model.PlaceholderPhoto, item.PhotoPath)
}

func TestItemRoundTrip(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()
	form := itemValues(brand, category, testPassword)

	id := itemID(t, h.postMultipart("/inventory/item/create", form, nil))

	item, err := store.GetItem(context.Background(), h.db, id)
	require.NoError(t, err)
	assert.Equal(t, form.Get("name"), item.Name)
	assert.Equal(t, brand.ID, item.Brand.ID)
	assert.Equal(t, category.ID, item.Category.ID)
	assert.Equal(t, form.Get("description"), item.Description)
	assert.Equal(t, form.Get("price"), item.Price)
	assert.Equal(t, 40, item.NumInStock)
	assert.Equal(t, "/inventory/item/"+id.String(), item.URL())

	rec := h.get(item.URL())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vater")
	assert.Contains(t, rec.Body.String(), "Sticks")
}

func TestItemDetailIsIdempotent(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()
	id := itemID(t, h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), nil))

	first := h.get("/inventory/item/" + id.String())
	second := h.get("/inventory/item/" + id.String())
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestItemPhotoIsStoredServedAndRemoved(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()

	id := itemID(t, h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), testPNG(t)))
	item, err := store.GetItem(context.Background(), h.db, id)
	require.NoError(t, err)
	require.True(t, item.HasPhoto())

	file := filepath.Join(h.uploadDir, path.Base(item.PhotoPath))
	_, err = os.Stat(file)
	require.NoError(t, err)

	served := h.get(item.PhotoPath)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, "image/jpeg", served.Header().Get("Content-Type"))

	rec := h.post(item.URL()+"/delete", url.Values{"itemid": {id.String()}, "password": {testPassword}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err), "photo file should be removed")
}

func TestItemPhotoReplacementRemovesOldFile(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()

	id := itemID(t, h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), testPNG(t)))
	before, err := store.GetItem(context.Background(), h.db, id)
	require.NoError(t, err)

	// No upload keeps the current photo.
	rec := h.postMultipart(before.URL()+"/update", itemValues(brand, category, testPassword), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	kept, err := store.GetItem(context.Background(), h.db, id)
	require.NoError(t, err)
	assert.Equal(t, before.PhotoPath, kept.PhotoPath)

	rec = h.postMultipart(before.URL()+"/update", itemValues(brand, category, testPassword), testPNG(t))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	after, err := store.GetItem(context.Background(), h.db, id)
	require.NoError(t, err)
	assert.NotEqual(t, before.PhotoPath, after.PhotoPath)

	_, err = os.Stat(filepath.Join(h.uploadDir, path.Base(before.PhotoPath)))
	assert.True(t, os.IsNotExist(err), "replaced photo should be removed")
	_, err = os.Stat(filepath.Join(h.uploadDir, path.Base(after.PhotoPath)))
	assert.NoError(t, err)
}

func TestDeletingPlaceholderItemLeavesUploadsUntouched(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()

	// An unrelated stored photo must survive.
	other := filepath.Join(h.uploadDir, "other.jpg")
	require.NoError(t, os.WriteFile(other, []byte("jpeg"), 0o644))

	id := itemID(t, h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), nil))
	rec := h.post("/inventory/item/"+id.String()+"/delete", url.Values{"itemid": {id.String()}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	entries, err := os.ReadDir(h.uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestWrongPasswordNeverWrites(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()
	id := itemID(t, h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), nil))
	before, err := store.GetItem(context.Background(), h.db, id)
	require.NoError(t, err)

	create := h.postMultipart("/inventory/item/create", itemValues(brand, category, "wrong"), nil)
	assert.Equal(t, http.StatusOK, create.Code)
	assert.Equal(t, 1, strings.Count(create.Body.String(), catalog.IncorrectPassword))
	// Submitted values are preserved.
	assert.Contains(t, create.Body.String(), `value="5A Hickory drum sticks"`)

	changed := itemValues(brand, category, "wrong")
	changed.Set("name", "Renamed sticks")
	update := h.postMultipart(before.URL()+"/update", changed, nil)
	assert.Equal(t, http.StatusOK, update.Code)
	assert.Equal(t, 1, strings.Count(update.Body.String(), catalog.IncorrectPassword))

	del := h.post(before.URL()+"/delete", url.Values{"itemid": {id.String()}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, del.Code)
	assert.Equal(t, 1, strings.Count(del.Body.String(), catalog.IncorrectPassword))

	assert.Equal(t, 1, countItems(t, h.db))
	after, err := store.GetItem(context.Background(), h.db, id)
	require.NoError(t, err)
	assert.Equal(t, before.Name, after.Name)
}

func TestItemValidationReportsAllFields(t *testing.T) {
	h := newHarness(t, false)
	h.seedRefs()

	rec := h.postMultipart("/inventory/item/create", url.Values{
		"name":       {"ab"},
		"numInStock": {"-1"},
		"password":   {testPassword},
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, msg := range []string{
		"Item name must be at least 3 characters.",
		"Select a brand.",
		"Select a category.",
		"Description must not be empty.",
		"Price must not be empty.",
		"Number in stock must be a whole number of 0 or more.",
	} {
		assert.Contains(t, body, msg)
	}
	assert.Zero(t, countItems(t, h.db))
}

func TestUnsupportedPhotoIsAViolation(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()

	rec := h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), []byte("just some text"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Photo must be a JPEG or PNG image.")
	assert.Zero(t, countItems(t, h.db))
}

func TestHugePhotoCanvasIsAViolation(t *testing.T) {
	h := newHarness(t, false)
	brand, category := h.seedRefs()

	rec := h.postMultipart("/inventory/item/create", itemValues(brand, category, testPassword), hugeCanvasPNG())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Photo dimensions are too large.")
	assert.Zero(t, countItems(t, h.db))
}

func TestNotFound(t *testing.T) {
	h := newHarness(t, false)

	for _, target := range []string{
		"/inventory/item/" + uuid.NewString(),
		"/inventory/item/not-an-id",
		"/inventory/brand/" + uuid.NewString(),
		"/inventory/category/" + uuid.NewString() + "/update",
		"/nowhere",
	} {
		rec := h.get(target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "Not found", target)
	}

	rec := h.post("/inventory/brand/"+uuid.NewString()+"/update", url.Values{"name": {"Remo"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormTokenIsRequired(t *testing.T) {
	h := newHarness(t, false)

	req := httptest.NewRequest(http.MethodPost, "/inventory/brand/create", strings.NewReader("name=Remo"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := h.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	n, err := store.CountBrands(context.Background(), h.db)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUploadTransportErrors(t *testing.T) {
	h := newHarness(t, false)

	large := url.Values{"name": {strings.Repeat("a", testMaxUpload)}}
	rec := h.post("/inventory/brand/create", large)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload failed")

	req := httptest.NewRequest(http.MethodPost, "/inventory/item/create", strings.NewReader("garbage"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	rec = h.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload failed")
}

func TestErrorDetailOnlyOutsideProduction(t *testing.T) {
	dev := newHarness(t, false)
	require.NoError(t, dev.db.Close())
	rec := dev.get("/inventory/brands")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is closed")

	prod := newHarness(t, true)
	require.NoError(t, prod.db.Close())
	rec = prod.get("/inventory/brands")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database is closed")
}

func TestMetricsExposeMutations(t *testing.T) {
	h := newHarness(t, false)
	h.post("/inventory/brand/create", url.Values{"name": {"Pearl"}})

	rec := h.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `katalog_mutations_total{kind="brand",op="create",stage="persisted"} 1`)
	assert.Contains(t, string(body), "katalog_http_requests_total")
}
