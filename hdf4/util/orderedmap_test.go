package util

import (
	"testing"
)

func fill(keys ...string) *OrderedMap {
	om := EmptyMap()
	for i, k := range keys {
		om.Add(k, i)
	}
	return om
}

func TestEmpty(t *testing.T) {
	om := EmptyMap()
	if om.Len() != 0 || len(om.Keys()) != 0 {
		t.Error("empty map has keys", om.Keys())
		return
	}
	if _, has := om.Get("a"); has {
		t.Error("empty map has a value")
	}
}

func TestOrder(t *testing.T) {
	keys := fill("c", "b", "a").Keys()
	if len(keys) != 3 || keys[0] != "c" || keys[1] != "b" || keys[2] != "a" {
		t.Error("Incorrect key order:", keys)
	}
}

func TestAdd(t *testing.T) {
	om := fill("a", "b")
	om.Add("a", 7)
	if om.Len() != 2 {
		t.Error("Add of an existing key should not duplicate it", om.Keys())
		return
	}
	if om.Keys()[0] != "a" {
		t.Error("replacing a value should keep its position", om.Keys())
		return
	}
	val, has := om.Get("a")
	if !has || val.(int) != 7 {
		t.Error("Did not get expected value back", val, has)
	}
}

func TestAddFirst(t *testing.T) {
	om := EmptyMap()
	if !om.AddFirst("x", "first") {
		t.Error("first add should succeed")
		return
	}
	if om.AddFirst("x", "second") {
		t.Error("second add should be refused")
		return
	}
	val, _ := om.Get("x")
	if val.(string) != "first" {
		t.Error("first-seen value should win, got", val)
	}
}

func TestDelete(t *testing.T) {
	om := fill("a", "b", "c")
	keys := om.Keys()
	om.Delete("b")
	om.Delete("missing")
	if keys[1] != "b" {
		t.Error("Delete should not disturb a previously returned key slice", keys)
		return
	}
	got := om.Keys()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Error("Incorrect keys after delete:", got)
		return
	}
	if _, has := om.Get("b"); has {
		t.Error("deleted key still present")
		return
	}
	om.Add("b", 9)
	if got := om.Keys(); got[2] != "b" {
		t.Error("re-added key should go last", got)
	}
}
