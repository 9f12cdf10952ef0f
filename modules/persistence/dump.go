package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/lkarlslund/tagcamps/modules/cli"
	"github.com/lkarlslund/tagcamps/modules/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
)

var (
	persistenceCmd = &cobra.Command{
		Use:   "persistence",
		Short: "Maintenance tools for the persistence database",
	}
	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps the persistence database in JSON",
	}
	output     = dumpCmd.Flags().String("output", "persistence-dump.json", "Output file for dump")
	restoreCmd = &cobra.Command{
		Use:   "restore",
		Short: "Restores the persistence database from JSON",
	}
	input = restoreCmd.Flags().String("input", "persistence-dump.json", "Input file to restore")
)

func init() {
	cli.Root.AddCommand(persistenceCmd)
	persistenceCmd.AddCommand(dumpCmd)
	dumpCmd.RunE = dump
	persistenceCmd.AddCommand(restoreCmd)
	restoreCmd.RunE = restore
	cli.AddPostRunHook(Close)
}

func dump(cmd *cobra.Command, args []string) error {
	db, err := getDB()
	if err != nil {
		return fmt.Errorf("Could not open database: %v", err)
	}
	jsonfile, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("Could not open output file: %v", err)
	}
	bw := bufio.NewWriter(jsonfile)
	records, err := Dump(db, bw)
	if err == nil {
		err = bw.Flush()
	}
	jsonfile.Close()
	if err != nil {
		return err
	}
	ui.Info().Msgf("Dumped %v records to %v", records, *output)
	return nil
}

func restore(cmd *cobra.Command, args []string) error {
	db, err := getDB()
	if err != nil {
		return fmt.Errorf("Could not open database: %v", err)
	}
	jsonfile, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("Could not open input file: %v", err)
	}
	defer jsonfile.Close()
	records, err := Restore(db, bufio.NewReader(jsonfile))
	if err != nil {
		return err
	}
	ui.Info().Msgf("Restored %v records from %v", records, *input)
	return nil
}

// Dump writes every bucket as a JSON array of {"bucket": {"key": value}}
// objects. Values are stored as JSON already and are written verbatim.
func Dump(db *bbolt.DB, w io.Writer) (int, error) {
	var records int
	err := db.View(func(tx *bbolt.Tx) error {
		fmt.Fprint(w, "[")
		firstbucket := true
		err := tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if !firstbucket {
				fmt.Fprint(w, ",")
			}
			firstbucket = false
			bucketname, _ := jsoniter.MarshalToString(string(name))
			fmt.Fprintf(w, "\n  {\n    %v: {", bucketname)
			c := b.Cursor()
			firstrecord := true
			for k, v := c.First(); k != nil; k, v = c.Next() {
				if !firstrecord {
					fmt.Fprint(w, ",")
				}
				firstrecord = false
				key, _ := jsoniter.MarshalToString(string(k))
				fmt.Fprintf(w, "\n      %v: %s", key, v)
				records++
			}
			fmt.Fprint(w, "\n    }\n  }")
			return nil
		})
		fmt.Fprintln(w, "\n]")
		return err
	})
	return records, err
}

// Restore puts every record of a dump back, replacing records with the same key
func Restore(db *bbolt.DB, r io.Reader) (int, error) {
	var buckets []map[string]map[string]jsoniter.RawMessage
	if err := jsoniter.NewDecoder(r).Decode(&buckets); err != nil {
		return 0, errors.Wrap(err, "decoding dump")
	}
	var records int
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range buckets {
			for name, values := range bucket {
				b, err := tx.CreateBucketIfNotExists([]byte(name))
				if err != nil {
					return err
				}
				for key, value := range values {
					if err = b.Put([]byte(key), []byte(value)); err != nil {
						return err
					}
					records++
				}
			}
		}
		return nil
	})
	return records, err
}
