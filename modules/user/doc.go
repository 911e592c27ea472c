// Package user holds the tenant user model and its storage.
//
// Users live in the tenant database of their organization, so a Store is
// always bound to one tenant connection. MongoStore is the production
// implementation; handlers reach it through the tenant model set.
//
// Lookups return nil, nil for unknown users so login code can treat
// "absent" and "wrong password" alike:
//
//	u, err := models.Users.FindByUsername(ctx, "jane")
//	if err != nil {
//		return err
//	}
//	if u == nil {
//		return auth.ErrInvalidCredentials
//	}
package user
