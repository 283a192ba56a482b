package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kslmndz/bakery_shop/internal/models"
)

func (env *testEnv) seedDelivery(orderID uint, personID *uint, status string) models.Delivery {
	d := models.Delivery{OrderID: orderID, DeliveryPersonID: personID, Status: status}
	require.NoError(env.T, env.DB.Create(&d).Error)
	return d
}

func TestAssignDelivery(t *testing.T) {
	env := newTestEnv(t)
	h := &DeliveryHandler{DB: env.DB}
	admin := env.seedUser("admin", models.RoleAdmin)
	courier := env.seedUser("courier", models.RoleDeliveryPerson)
	customer := env.seedUser("maria", models.RoleCustomer)
	order := env.seedOrder(customer.ID, models.OrderStatusReady)
	env.seedDelivery(order.ID, nil, models.DeliveryStatusPending)

	body := map[string]uint{"delivery_person_id": courier.ID}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/deliveries/1/assign", body)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, admin.ID, models.RoleAdmin)
	require.NoError(t, h.AssignDelivery(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var d models.Delivery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Equal(t, models.DeliveryStatusAssigned, d.Status)
	require.NotNil(t, d.DeliveryPersonID)
	require.Equal(t, courier.ID, *d.DeliveryPersonID)
}

func TestAssignDeliveryToNonCourier(t *testing.T) {
	env := newTestEnv(t)
	h := &DeliveryHandler{DB: env.DB}
	admin := env.seedUser("admin", models.RoleAdmin)
	baker := env.seedUser("baker", models.RoleBaker)
	customer := env.seedUser("maria", models.RoleCustomer)
	order := env.seedOrder(customer.ID, models.OrderStatusReady)
	env.seedDelivery(order.ID, nil, models.DeliveryStatusPending)

	body := map[string]uint{"delivery_person_id": baker.ID}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/deliveries/1/assign", body)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, admin.ID, models.RoleAdmin)
	err := h.AssignDelivery(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a delivery person")
}

func TestDeliveryStatusStampsTimes(t *testing.T) {
	env := newTestEnv(t)
	h := &DeliveryHandler{DB: env.DB}
	courier := env.seedUser("courier", models.RoleDeliveryPerson)
	customer := env.seedUser("maria", models.RoleCustomer)
	order := env.seedOrder(customer.ID, models.OrderStatusOutForDelivery)
	env.seedDelivery(order.ID, &courier.ID, models.DeliveryStatusAssigned)

	rec, c := env.doJSONRequest(http.MethodPatch, "/api/v1/deliveries/1/status?status=picked_up", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, courier.ID, models.RoleDeliveryPerson)
	require.NoError(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var d models.Delivery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.NotNil(t, d.PickedUpAt)
	require.Nil(t, d.DeliveredAt)

	rec, c = env.doJSONRequest(http.MethodPatch, "/api/v1/deliveries/1/status?status=delivered", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, courier.ID, models.RoleDeliveryPerson)
	require.NoError(t, h.UpdateStatus(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.NotNil(t, d.DeliveredAt)
}

func TestDeliveryStatusForeignCourierForbidden(t *testing.T) {
	env := newTestEnv(t)
	h := &DeliveryHandler{DB: env.DB}
	assigned := env.seedUser("courier1", models.RoleDeliveryPerson)
	other := env.seedUser("courier2", models.RoleDeliveryPerson)
	customer := env.seedUser("maria", models.RoleCustomer)
	order := env.seedOrder(customer.ID, models.OrderStatusOutForDelivery)
	env.seedDelivery(order.ID, &assigned.ID, models.DeliveryStatusAssigned)

	_, c := env.doJSONRequest(http.MethodPatch, "/api/v1/deliveries/1/status?status=picked_up", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	asUser(c, other.ID, models.RoleDeliveryPerson)
	require.Error(t, h.UpdateStatus(c))
}

func TestGetDeliveriesScopedToCourier(t *testing.T) {
	env := newTestEnv(t)
	h := &DeliveryHandler{DB: env.DB}
	courier := env.seedUser("courier1", models.RoleDeliveryPerson)
	other := env.seedUser("courier2", models.RoleDeliveryPerson)
	customer := env.seedUser("maria", models.RoleCustomer)
	o1 := env.seedOrder(customer.ID, models.OrderStatusReady)
	o2 := env.seedOrder(customer.ID, models.OrderStatusReady)
	env.seedDelivery(o1.ID, &courier.ID, models.DeliveryStatusAssigned)
	env.seedDelivery(o2.ID, &other.ID, models.DeliveryStatusAssigned)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/deliveries", nil)
	asUser(c, courier.ID, models.RoleDeliveryPerson)
	require.NoError(t, h.GetDeliveries(c))

	var list []models.Delivery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/deliveries", nil)
	asUser(c, 99, models.RoleAdmin)
	require.NoError(t, h.GetDeliveries(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
}
