package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karantec/EcommerceMern/internal/entity"
)

func TestGetProductsHandler(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, 100, 2)
	f.seedProduct(t, 50, 1)

	c, rec := f.request(http.MethodGet, "/api/v1/products", "", nil)
	require.NoError(t, f.productHandler.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var products []entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 2)
}

func TestGetProductHandler(t *testing.T) {
	f := newAPIFixture(t)
	p := f.seedProduct(t, 100, 2)

	c, rec := f.request(http.MethodGet, "/", "", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(p.ID))
	require.NoError(t, f.productHandler.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 100.0, got.Price)

	c, rec = f.request(http.MethodGet, "/", "", nil)
	c.SetParamNames("id")
	c.SetParamValues("9999")
	require.NoError(t, f.productHandler.GetProduct(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductHandler(t *testing.T) {
	f := newAPIFixture(t)

	body := `{"name": "tripod", "description": "a tripod", "price": 35.50, "countInStock": 4}`
	c, rec := f.request(http.MethodPost, "/api/v1/products", body, adminClaims(1))
	require.NoError(t, f.productHandler.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, 35.50, created.Price)

	c, rec = f.request(http.MethodPost, "/api/v1/products", `{"price": -1}`, adminClaims(1))
	require.NoError(t, f.productHandler.CreateProduct(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductHandler(t *testing.T) {
	f := newAPIFixture(t)
	p := f.seedProduct(t, 100, 2)

	body := `{"name": "camera mk2", "description": "updated", "price": 110, "countInStock": 3}`
	c, rec := f.request(http.MethodPut, "/", body, adminClaims(1))
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(p.ID))
	require.NoError(t, f.productHandler.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "camera mk2", updated.Name)

	c, rec = f.request(http.MethodPut, "/", body, adminClaims(1))
	c.SetParamNames("id")
	c.SetParamValues("9999")
	require.NoError(t, f.productHandler.UpdateProduct(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
