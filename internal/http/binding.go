package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin/binding"

	"github.com/fairyhunter13/production-ledger/internal/model"
)

// strictJSON is binding.JSON with unknown fields rejected per decoder, so
// gin's package-level decoder flags stay untouched.
type strictJSON struct{}

func (strictJSON) Name() string { return "json" }

func (strictJSON) Bind(req *http.Request, obj any) error {
	if req == nil || req.Body == nil {
		return errors.New("invalid request")
	}
	return decodeStrict(req.Body, obj)
}

func decodeStrict(r io.Reader, obj any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

// eventDate reads an optional timestamp. null and "" both mean "use now".
type eventDate struct {
	t *time.Time
}

func (d *eventDate) UnmarshalJSON(b []byte) error {
	if s := string(b); s == "null" || s == `""` {
		d.t = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	d.t = &t
	return nil
}

type productionRequest struct {
	ProductID string               `json:"productId"`
	Weight    *model.WeightVariant `json:"weight"`
	Quantity  int64                `json:"quantity"`
	Date      eventDate            `json:"date"`
}

func (r productionRequest) event() model.ProductionEvent {
	return model.ProductionEvent{
		ProductID: r.ProductID,
		Weight:    r.Weight,
		Quantity:  r.Quantity,
		Date:      r.Date.t,
	}
}
