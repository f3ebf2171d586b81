package memory

import "errors"

// Stand-in for the foreign key error the postgres backend would surface.
var errForeignKey = errors.New("memory: violates foreign key constraint")
