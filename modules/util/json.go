package util

import (
	"os"

	jsoniter "github.com/json-iterator/go"
)

var qjson = jsoniter.ConfigCompatibleWithStandardLibrary

// Takes a filename and any object and writes its JSON representation to the file, returns an error if it fails.
func WriteJSON(filename string, obj any) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	encoder := qjson.NewEncoder(file)
	encoder.SetIndent("", "\t")
	return encoder.Encode(obj)
}

// Takes a filename and reads the JSON representation of an object into it, returns an error if it fails.
func ReadJSON(filename string, obj any) (err error) {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return qjson.NewDecoder(file).Decode(obj)
}
