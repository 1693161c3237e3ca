package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/foodking/internal/domain/geo"
	"github.com/xenking/foodking/internal/domain/menu"
	"github.com/xenking/foodking/internal/domain/order"
	"github.com/xenking/foodking/internal/domain/validation"
)

const maxBodySize = 1 << 20

// readBody returns the request body as a decoder. Empty or oversized bodies
// are validation errors.
func readBody(w http.ResponseWriter, r *http.Request) (*jx.Decoder, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, validation.New("body", "request body is too large")
		}
		return nil, errors.Wrap(err, "read body")
	}
	if len(data) == 0 {
		return nil, validation.Required("body")
	}
	return jx.DecodeBytes(data), nil
}

// malformed converts a decoding failure of field into a validation error.
func malformed(field string, err error) error {
	if err == nil {
		return nil
	}
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return err
	}
	if field == "" {
		field = "body"
	}
	return validation.New(field, "malformed JSON")
}

// optStr decodes a string that may also be null.
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// optFloat decodes a number that may also be null.
func optFloat(d *jx.Decoder) (*float64, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := d.Float64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func decodePlaceOrder(d *jx.Decoder) (req order.PlaceOrderRequest, _ error) {
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		k := string(key)
		switch k {
		case "customerName":
			req.CustomerName, err = optStr(d)
		case "customerPhone":
			req.CustomerPhone, err = optStr(d)
		case "deliveryAddress":
			req.DeliveryAddress, err = optStr(d)
		case "paymentMethod":
			req.PaymentMethod, err = optStr(d)
		case "razorpayOrderId":
			req.GatewayOrderID, err = optStr(d)
		case "razorpayPaymentId":
			req.GatewayPaymentID, err = optStr(d)
		case "customerLocation":
			if d.Next() == jx.Null {
				return d.Null()
			}
			err = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				var err error
				switch string(key) {
				case "lat":
					req.Lat, err = optFloat(d)
				case "lng":
					req.Lng, err = optFloat(d)
				default:
					err = d.Skip()
				}
				return err
			})
			return malformed(k, err)
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				line, err := decodeCartLine(d)
				if err != nil {
					return malformed("items["+strconv.Itoa(len(req.Items))+"]", err)
				}
				req.Items = append(req.Items, line)
				return nil
			})
		default:
			return d.Skip()
		}
		return malformed(k, err)
	})
	return req, malformed("", err)
}

// decodeCartLine reads an item reference and quantity. Any client price is
// skipped: orders are priced from the catalog only.
func decodeCartLine(d *jx.Decoder) (line order.CartLine, _ error) {
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "itemId":
			line.ItemID, err = optStr(d)
		case "quantity":
			line.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return line, err
}

type statusUpdate struct {
	Status          string
	RejectionReason string
}

func decodeStatusUpdate(d *jx.Decoder) (req statusUpdate, _ error) {
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		k := string(key)
		switch k {
		case "status":
			req.Status, err = optStr(d)
		case "rejectionReason":
			req.RejectionReason, err = optStr(d)
		default:
			return d.Skip()
		}
		return malformed(k, err)
	})
	return req, malformed("", err)
}

type verifyRequest struct {
	OrderRef   string
	PaymentRef string
	Signature  string
	OrderID    string
}

func decodeVerify(d *jx.Decoder) (req verifyRequest, _ error) {
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		k := string(key)
		switch k {
		case "razorpay_order_id":
			req.OrderRef, err = optStr(d)
		case "razorpay_payment_id":
			req.PaymentRef, err = optStr(d)
		case "razorpay_signature":
			req.Signature, err = optStr(d)
		case "orderId":
			req.OrderID, err = optStr(d)
		default:
			return d.Skip()
		}
		return malformed(k, err)
	})
	return req, malformed("", err)
}

// decodeMenuPatch reads menu item fields. Absent fields stay nil.
func decodeMenuPatch(d *jx.Decoder) (p menu.Patch, _ error) {
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		k := string(key)
		switch k {
		case "name":
			p.Name, err = strPtr(d)
		case "description":
			p.Description, err = strPtr(d)
		case "image":
			p.Image, err = strPtr(d)
		case "category":
			var s *string
			if s, err = strPtr(d); s != nil {
				c := menu.Category(*s)
				p.Category = &c
			}
		case "price":
			var f *float64
			if f, err = optFloat(d); f != nil {
				price := decimal.NewFromFloat(*f)
				p.Price = &price
			}
		case "isAvailable":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var v bool
			v, err = d.Bool()
			p.IsAvailable = &v
		default:
			return d.Skip()
		}
		return malformed(k, err)
	})
	return p, malformed("", err)
}

func strPtr(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// writeJSON writes a JSON response produced by body.
func writeJSON(w http.ResponseWriter, status int, body func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	body(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeData writes {"success":true,"data":...} plus optional extra fields.
func writeData(w http.ResponseWriter, status int, data func(e *jx.Encoder), extra ...func(e *jx.Encoder)) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("success")
		e.Bool(true)
		for _, x := range extra {
			x(e)
		}
		if data != nil {
			e.FieldStart("data")
			data(e)
		}
		e.ObjEnd()
	})
}

func strField(name, v string) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.FieldStart(name)
		e.Str(v)
	}
}

func intField(name string, v int) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.FieldStart(name)
		e.Int(v)
	}
}

func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Float64(d.InexactFloat64())
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeCoordinate(e *jx.Encoder, c geo.Coordinate) {
	e.ObjStart()
	e.FieldStart("lat")
	e.Float64(c.Lat)
	e.FieldStart("lng")
	e.Float64(c.Lng)
	e.ObjEnd()
}

func encodeMenuItem(e *jx.Encoder, it *menu.Item) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(it.ID)
	e.FieldStart("name")
	e.Str(it.Name)
	e.FieldStart("description")
	e.Str(it.Description)
	e.FieldStart("price")
	encodeMoney(e, it.Price)
	e.FieldStart("image")
	e.Str(it.Image)
	e.FieldStart("category")
	e.Str(string(it.Category))
	e.FieldStart("isAvailable")
	e.Bool(it.IsAvailable)
	e.FieldStart("createdAt")
	encodeTime(e, it.CreatedAt)
	e.FieldStart("updatedAt")
	encodeTime(e, it.UpdatedAt)
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)

	e.FieldStart("customer")
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.CustomerID)
	e.FieldStart("name")
	e.Str(o.CustomerName)
	e.FieldStart("phone")
	e.Str(o.CustomerPhone)
	e.ObjEnd()

	e.FieldStart("items")
	e.ArrStart()
	for _, l := range o.Lines {
		e.ObjStart()
		e.FieldStart("itemId")
		e.Str(l.ItemID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("price")
		encodeMoney(e, l.Price)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("totalAmount")
	encodeMoney(e, o.TotalAmount)
	e.FieldStart("deliveryAddress")
	e.Str(o.DeliveryAddress)
	e.FieldStart("customerLocation")
	encodeCoordinate(e, o.CustomerLocation)
	e.FieldStart("paymentMethod")
	e.Str(string(o.PaymentMethod))
	e.FieldStart("paymentStatus")
	e.Str(string(o.PaymentStatus))
	if o.GatewayOrderID != "" {
		e.FieldStart("razorpayOrderId")
		e.Str(o.GatewayOrderID)
	}
	if o.GatewayPaymentID != "" {
		e.FieldStart("razorpayPaymentId")
		e.Str(o.GatewayPaymentID)
	}
	e.FieldStart("status")
	e.Str(string(o.Status))
	if o.RejectionReason != "" {
		e.FieldStart("rejectionReason")
		e.Str(o.RejectionReason)
	}
	e.FieldStart("createdAt")
	encodeTime(e, o.CreatedAt)
	e.FieldStart("updatedAt")
	encodeTime(e, o.UpdatedAt)
	e.ObjEnd()
}

func encodeOrders(e *jx.Encoder, orders []order.Order) {
	e.ArrStart()
	for i := range orders {
		encodeOrder(e, &orders[i])
	}
	e.ArrEnd()
}
