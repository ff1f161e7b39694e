package chaseparser

import "errors"

var errTooFewFields = errors.New("row has fewer fields than the header requires")
