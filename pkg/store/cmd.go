package store

import (
	"encoding/binary"
	"strings"

	bolt "go.etcd.io/bbolt"
	"src.servo.sh/pkg/store/storedefs"
)

func init() {
	initDB["create the command history bucket"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCmd))
		return err
	}
}

func (s *dbStore) viewCmds(f func(b *bolt.Bucket) error) error {
	return s.db.View(func(tx *bolt.Tx) error { return f(tx.Bucket([]byte(bucketCmd))) })
}

func (s *dbStore) updateCmds(f func(b *bolt.Bucket) error) error {
	return s.db.Update(func(tx *bolt.Tx) error { return f(tx.Bucket([]byte(bucketCmd))) })
}

// NextCmdSeq returns the sequence number the next added command will get.
func (s *dbStore) NextCmdSeq() (int, error) {
	var seq int
	err := s.viewCmds(func(b *bolt.Bucket) error {
		seq = int(b.Sequence()) + 1
		return nil
	})
	return seq, err
}

// AddCmd appends a command to the history and returns its sequence number.
func (s *dbStore) AddCmd(text string) (int, error) {
	var seq uint64
	err := s.updateCmds(func(b *bolt.Bucket) error {
		var err error
		if seq, err = b.NextSequence(); err != nil {
			return err
		}
		return b.Put(seqKey(seq), []byte(text))
	})
	return int(seq), err
}

// DelCmd deletes the command with the given sequence number. Deleting a
// command that does not exist is not an error.
func (s *dbStore) DelCmd(seq int) error {
	return s.updateCmds(func(b *bolt.Bucket) error {
		return b.Delete(seqKey(uint64(seq)))
	})
}

// Cmd returns the text of the command with the given sequence number.
func (s *dbStore) Cmd(seq int) (string, error) {
	var text string
	err := s.viewCmds(func(b *bolt.Bucket) error {
		v := b.Get(seqKey(uint64(seq)))
		if v == nil {
			return storedefs.ErrNoMatchingCmd
		}
		text = string(v)
		return nil
	})
	return text, err
}

// CmdsWithSeq returns the commands with sequence numbers in [from, upto).
func (s *dbStore) CmdsWithSeq(from, upto int) ([]storedefs.Cmd, error) {
	var cmds []storedefs.Cmd
	err := s.viewCmds(func(b *bolt.Bucket) error {
		c := b.Cursor()
		for k, v := c.Seek(seqKey(uint64(from))); k != nil && keySeq(k) < upto; k, v = c.Next() {
			cmds = append(cmds, storedefs.Cmd{Text: string(v), Seq: keySeq(k)})
		}
		return nil
	})
	return cmds, err
}

// NextCmd returns the first command at or after from that starts with prefix.
func (s *dbStore) NextCmd(from int, prefix string) (storedefs.Cmd, error) {
	var cmd storedefs.Cmd
	err := s.viewCmds(func(b *bolt.Bucket) error {
		c := b.Cursor()
		for k, v := c.Seek(seqKey(uint64(from))); k != nil; k, v = c.Next() {
			if strings.HasPrefix(string(v), prefix) {
				cmd = storedefs.Cmd{Text: string(v), Seq: keySeq(k)}
				return nil
			}
		}
		return storedefs.ErrNoMatchingCmd
	})
	return cmd, err
}

// PrevCmd returns the last command before upto that starts with prefix.
func (s *dbStore) PrevCmd(upto int, prefix string) (storedefs.Cmd, error) {
	var cmd storedefs.Cmd
	err := s.viewCmds(func(b *bolt.Bucket) error {
		c := b.Cursor()
		k, v := c.Seek(seqKey(uint64(upto)))
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		for ; k != nil; k, v = c.Prev() {
			if strings.HasPrefix(string(v), prefix) {
				cmd = storedefs.Cmd{Text: string(v), Seq: keySeq(k)}
				return nil
			}
		}
		return storedefs.ErrNoMatchingCmd
	})
	return cmd, err
}

// Keys are big-endian so that cursors visit commands in order.
func seqKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, seq)
}

func keySeq(key []byte) int {
	return int(binary.BigEndian.Uint64(key))
}
