/*
Package resolver derives the current Step from FilledData.

The resolver is a static, ordered list of rules. Each rule is a guard over the
data plus a constructor for the step to show. Rules are evaluated top to bottom
and the first matching guard wins:

 1. no flow type      -> ChooseFlow
 2. no email          -> EnterEmail
 3. no password       -> EnterPassword
 4. user ID present   -> Done
 5. fallback          -> EnterPassword (login in flight or retryable)

Because "what is missing" is the only driver, restoring partial data after a
restart reproduces the right screen with no extra bookkeeping.
*/
package resolver
